package cart

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode serializes the cart to the opaque blob clients keep in local storage.
func (c Cart) Encode() (string, error) {
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a blob and rebuilds it through Add, so duplicate products
// are merged and invalid lines rejected.
func Decode(blob string) (Cart, error) {
	raw, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}

	var decoded Cart
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}

	return FromLines(decoded.Lines)
}

// FromLines builds a cart from untrusted lines.
func FromLines(lines []Line) (Cart, error) {
	c := New()
	for _, l := range lines {
		var err error
		if c, err = c.Add(l); err != nil {
			return Cart{}, err
		}
	}
	return c, nil
}
