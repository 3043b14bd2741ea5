package product

import "strings"

// Validate enforces the catalog rules: a name, and non-negative price
// and stock on the product and on every variant.
func (in *Input) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if in.Stock < 0 {
		return invalid("stock must not be negative")
	}

	for i := range in.Variants {
		v := &in.Variants[i]
		v.Spec = strings.TrimSpace(v.Spec)
		if v.Spec == "" {
			return invalid("variant %d: spec is required", i)
		}
		if v.Price.IsNegative() {
			return invalid("variant %d: price must not be negative", i)
		}
		if v.Stock < 0 {
			return invalid("variant %d: stock must not be negative", i)
		}
	}
	return nil
}

func (in Input) apply(p *Product) {
	p.Name = in.Name
	p.Brand = strings.TrimSpace(in.Brand)
	p.Category = strings.TrimSpace(in.Category)
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.Color = strings.TrimSpace(in.Color)
	p.Spec = strings.TrimSpace(in.Spec)
	p.Variants = in.Variants
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
}
