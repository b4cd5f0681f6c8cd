package pagination

import "coffee-orders/internal/model"

const (
	// DefaultPageSize applies when neither first nor last is given.
	DefaultPageSize = 20
	// MaxPageSize caps any requested page size.
	MaxPageSize = 100
)

// Args are raw relay-style pagination arguments as supplied by the caller.
// Nil First/Last mean "not specified"; empty cursors mean "not specified".
type Args struct {
	First  *int
	After  string
	Last   *int
	Before string
}

// Window is the normalized form of Args: exactly one of First or Last is
// positive, capped at MaxPageSize.
type Window struct {
	First  int
	Last   int
	After  string
	Before string
}

// Normalize validates the arguments and resolves the effective page size.
// Specifying both first and last, or a non-positive value for either, is
// rejected. When neither is given, DefaultPageSize applies as first.
func (a Args) Normalize() (Window, error) {
	if a.First != nil && a.Last != nil {
		return Window{}, model.InvalidInput("Use either first or last, not both")
	}
	if a.First != nil && *a.First < 1 {
		return Window{}, model.InvalidInput("first must be greater than 0")
	}
	if a.Last != nil && *a.Last < 1 {
		return Window{}, model.InvalidInput("last must be greater than 0")
	}

	w := Window{After: a.After, Before: a.Before}
	switch {
	case a.First != nil:
		w.First = min(*a.First, MaxPageSize)
	case a.Last != nil:
		w.Last = min(*a.Last, MaxPageSize)
	default:
		w.First = DefaultPageSize
	}

	return w, nil
}
