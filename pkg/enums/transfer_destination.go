package enums

import "fmt"

// TransferDestination identifies which party a payout transfer targets.
type TransferDestination string

const (
	TransferDestinationMember TransferDestination = "member"
	TransferDestinationStore  TransferDestination = "store"
)

var validTransferDestinations = []TransferDestination{
	TransferDestinationMember,
	TransferDestinationStore,
}

// String implements fmt.Stringer.
func (d TransferDestination) String() string {
	return string(d)
}

// IsValid reports whether the value is a known TransferDestination.
func (d TransferDestination) IsValid() bool {
	for _, candidate := range validTransferDestinations {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseTransferDestination converts raw input into a TransferDestination.
func ParseTransferDestination(value string) (TransferDestination, error) {
	for _, candidate := range validTransferDestinations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer destination %q", value)
}
