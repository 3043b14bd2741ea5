package category

// Facet is one distinct category or brand value and how many products
// carry it.
type Facet struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
}

type Facets struct {
	Categories []Facet `json:"categories"`
	Brands     []Facet `json:"brands"`
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)
