package cart

import "fmt"

// ConflictPolicy decides what AddItem does with an item from a restaurant other
// than the one the cart is bound to.
type ConflictPolicy string

const (
	// PolicyReject refuses the item; the caller clears the cart explicitly first.
	PolicyReject ConflictPolicy = "reject"
	// PolicyReplace drops the current lines and starts a cart for the new restaurant.
	PolicyReplace ConflictPolicy = "replace"
)

func ParsePolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(s); p {
	case PolicyReject, PolicyReplace:
		return p, nil
	case "":
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown cart conflict policy %q", s)
}
