package phone

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		description   string
		number        string
		region        string
		expected      bool
		shouldBeError bool
	}{
		{
			description: "US digits, US region",
			number:      "8663454897",
			region:      "US",
			expected:    true,
		},
		{
			description: "surrounding whitespace",
			number:      "  8663454897 \n",
			region:      "US",
			expected:    true,
		},
		{
			description: "US spaced, US region",
			number:      "866 345 4897",
			region:      "US",
			expected:    true,
		},
		{
			description: "US dashed, US region",
			number:      "866-345-4897",
			region:      "US",
			expected:    true,
		},
		{
			description: "lowercase region",
			number:      "8663454897",
			region:      "us",
			expected:    true,
		},
		{
			description: "international format, no region",
			number:      "+1 866 345 4897",
			region:      NoRegion,
			expected:    true,
		},
		{
			description: "international format, empty region",
			number:      "+1 866 345 4897",
			region:      "",
			expected:    true,
		},
		{
			description:   "national format, no region",
			number:        "8663454897",
			region:        NoRegion,
			expected:      false,
			shouldBeError: true,
		},
		{
			description: "US number, GB region",
			number:      "8663454897",
			region:      "GB",
			expected:    false,
		},
		{
			description:   "letters, no region",
			number:        "abcdefghij",
			region:        NoRegion,
			expected:      false,
			shouldBeError: true,
		},
		{
			description:   "letters, US region",
			number:        "abcdefg",
			region:        "US",
			expected:      false,
			shouldBeError: true,
		},
		{
			description:   "empty",
			number:        "",
			region:        "US",
			expected:      false,
			shouldBeError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			ok, err := Validate(tc.number, tc.region)
			if ok != tc.expected {
				t.Errorf("expected %v for %q in %q but got %v", tc.expected, tc.number, tc.region, ok)
			}
			if (err != nil) != tc.shouldBeError {
				t.Errorf(
					"unexpected error status--wanted %v but got %v with error %v",
					tc.shouldBeError,
					err != nil,
					err,
				)
			}
			if err != nil && !errors.Is(err, ErrParse) {
				t.Errorf("expected the error to wrap ErrParse but got %v", err)
			}
		})
	}
}
