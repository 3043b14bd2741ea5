package cart

import "errors"

var (
	ErrInvalidQuantity  = errors.New("invalid cart quantity")
	ErrInvalidProduct   = errors.New("cart line has no product")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidBlob      = errors.New("cart blob is malformed")
)
