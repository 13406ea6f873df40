package enums

import "fmt"

// RecallReasonType classifies why a store recalled a listing.
type RecallReasonType string

const (
	RecallReasonTypeIssue           RecallReasonType = "issue"
	RecallReasonTypeStoreDiscretion RecallReasonType = "store_discretion"
	RecallReasonTypeOwnerRequest    RecallReasonType = "owner_request"
)

var validRecallReasonTypes = []RecallReasonType{
	RecallReasonTypeIssue,
	RecallReasonTypeStoreDiscretion,
	RecallReasonTypeOwnerRequest,
}

// String implements fmt.Stringer.
func (t RecallReasonType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known RecallReasonType.
func (t RecallReasonType) IsValid() bool {
	for _, candidate := range validRecallReasonTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRecallReasonType converts raw input into a RecallReasonType.
func ParseRecallReasonType(value string) (RecallReasonType, error) {
	for _, candidate := range validRecallReasonTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recall reason type %q", value)
}
