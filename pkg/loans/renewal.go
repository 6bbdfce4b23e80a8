package loans

import (
	"time"

	"github.com/openshelf/openshelf/pkg/errcodes"
)

// RenewalWindowDays is how far ahead a librarian may push a due date.
const RenewalWindowDays = 21

// ProposedRenewalDate is the default a renewal form is prefilled with.
func ProposedRenewalDate(today time.Time) time.Time {
	return today.AddDate(0, 0, 7)
}

// ValidateRenewalDate checks a renewal date against the allowed window. The
// "4 weeks" in the message does not match the three week window; both are kept
// as the library has always worded it.
func ValidateRenewalDate(data, today time.Time) error {
	if data.Before(today) {
		return errcodes.ValidationError("Invalid date - renewal in past")
	}
	if data.After(today.AddDate(0, 0, RenewalWindowDays)) {
		return errcodes.ValidationError("Invalid date - renewal more than 4 weeks ahead")
	}
	return nil
}
