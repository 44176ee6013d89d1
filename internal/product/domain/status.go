package domain

// Status is the review state of a product.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted:
		return true
	}
	return false
}

// CanTransition reports whether a product may move from s to next.
// Re-submitting an already submitted product is a no-op and stays allowed;
// a submitted product never goes back to draft.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusSubmitted
	}
	return false
}
