package domain

// Money pairs an integer minor-unit amount with its ISO currency code.
// Amounts crossing package boundaries are always minor units; floating point
// only appears inside rate normalization and is rounded before storage.
type Money struct {
	Amount   int64
	Currency string
}
