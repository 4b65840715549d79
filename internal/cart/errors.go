package cart

import "errors"

var (
	ErrConflictingRestaurant = errors.New("cart already holds items from another restaurant")
	ErrItemNotFound          = errors.New("item not found in cart")
	ErrInvalidItem           = errors.New("item must have an id and belong to the given restaurant")
)
