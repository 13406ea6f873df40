package enums

import "fmt"

// ItemStatus tracks the lifecycle of a member's item.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusListed    ItemStatus = "listed"
	ItemStatusRecalled  ItemStatus = "recalled"
	ItemStatusSold      ItemStatus = "sold"
	ItemStatusAbandoned ItemStatus = "abandoned"
)

var validItemStatuses = []ItemStatus{
	ItemStatusAvailable,
	ItemStatusListed,
	ItemStatusRecalled,
	ItemStatusSold,
	ItemStatusAbandoned,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusSold || s == ItemStatusAbandoned
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
