package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NoRegion indicates that a number carries its own country code, e.g.,
// "+1 866 345 4897". It's the parser's code for an unknown region.
const NoRegion = phonenumbers.UNKNOWN_REGION

// ErrParse is returned when the number can't be parsed at all, as opposed to
// parsing fine but failing numbering plan checks.
var ErrParse = errors.New("can't parse the phone number")

// Validate reports whether number is both possible (the right length and
// shape for region) and valid (assigned according to the numbering plan).
// region is an ISO 3166-1 alpha-2 code such as "US". If region is empty or
// NoRegion, number must be in international format.
//
// A non-nil error wraps ErrParse and means number is not a phone number at
// all. Validate never panics.
func Validate(number string, region string) (ok bool, err error) {
	number = strings.TrimSpace(number)
	if region == "" {
		region = NoRegion
	}

	// The parser works through a lot of regular expressions against
	// user input, so we don't want a bug there to take down the caller.
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w %q: %v", ErrParse, number, r)
		}
	}()

	p, err := phonenumbers.Parse(number, strings.ToUpper(region))
	if err != nil {
		return false, fmt.Errorf("%w %q: %v", ErrParse, number, err)
	}

	return phonenumbers.IsPossibleNumber(p) && phonenumbers.IsValidNumber(p), nil
}
