package resolve

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ptgott/mail-to-sms/gateway"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResolver returns a quiet Resolver so test output stays readable.
func newTestResolver(t *testing.T, c Config) Resolver {
	t.Helper()
	c.Quiet = true
	r, err := New(c, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestValidateCarrier(t *testing.T) {
	r := newTestResolver(t, Config{})
	tbl := gateway.Load("", zerolog.Nop())
	require.NotEmpty(t, tbl)

	testCases := []struct {
		carrier  string
		expected bool
	}{
		{"alltel", true},
		{"att", true},
		{"boost mobile", true},
		{"cricket wireless", true},
		{"metropcs", true},
		{"project fi", true},
		{"sprint", true},
		{"tmobile", true},
		{"us cellular", true},
		{"verizon wireless", true},
		{"virgin mobile", true},
		{"  att\t", true},
		{"", false},
		{"   ", false},
		{"12345", false},
		{"at&t", false},
		{"t-mobile", false},
		{"ATT", false},
		{"not a carrier", false},
	}

	for _, tc := range testCases {
		t.Run(tc.carrier, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.ValidateCarrier(tbl, tc.carrier))
		})
	}
}

func TestValidateCarrier_EveryAlias(t *testing.T) {
	r := newTestResolver(t, Config{})
	tbl := gateway.Load("", zerolog.Nop())

	for _, e := range tbl {
		for _, n := range e.CarrierNames {
			assert.True(t, r.ValidateCarrier(tbl, n), "expected %q to be valid", n)
		}
	}
}

func TestValidateNumber(t *testing.T) {
	testCases := []struct {
		description string
		number      string
		region      string
		expected    bool
	}{
		{"US digits, US region", "8663454897", "US", true},
		{"US spaced, US region", "866 345 4897", "US", true},
		{"US dashed, US region", "866-345-4897", "US", true},
		{"US international, no region", "+1 866 345 4897", NoRegion, true},
		{"US digits, no region", "8663454897", NoRegion, false},
		{"US digits, GB region", "8663454897", "GB", false},
		{"letters, no region", "abcdefghij", NoRegion, false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			r := newTestResolver(t, Config{Region: tc.region})
			assert.Equal(t, tc.expected, r.ValidateNumber(tc.number))
		})
	}
}

func TestSelectGateway(t *testing.T) {
	tbl := gateway.Load("", zerolog.Nop())

	testCases := []struct {
		carrier       string
		sms           string
		mms           string
		shouldBeError bool
	}{
		{carrier: "att", sms: "txt.att.net", mms: "mms.att.net"},
		{carrier: "sprint", sms: "messaging.sprintpcs.com", mms: "pm.sprint.com"},
		{carrier: "republic wireless", sms: "text.republicwireless.com", mms: "text.republicwireless.com"},
		{carrier: "12345", shouldBeError: true},
		{carrier: "", shouldBeError: true},
		{carrier: "not a carrier", shouldBeError: true},
		{carrier: "at&t", shouldBeError: true},
	}

	for _, preferMMS := range []bool{false, true} {
		r := newTestResolver(t, Config{PreferMMS: preferMMS})
		for _, tc := range testCases {
			d, err := r.SelectGateway(tbl, tc.carrier)
			if (err != nil) != tc.shouldBeError {
				t.Errorf(
					"%q (mms: %v): unexpected error status--wanted %v but got %v with error %v",
					tc.carrier,
					preferMMS,
					tc.shouldBeError,
					err != nil,
					err,
				)
				continue
			}
			if err != nil {
				assert.True(t, errors.Is(err, ErrNoGateway))
				assert.Empty(t, d)
				continue
			}
			expected := tc.sms
			if preferMMS {
				expected = tc.mms
			}
			assert.Equal(t, expected, d, "carrier %q, mms: %v", tc.carrier, preferMMS)
		}
	}
}

func TestSelectGateway_EntryWithoutDomains(t *testing.T) {
	r := newTestResolver(t, Config{})
	tbl := gateway.Table{{CarrierNames: []string{"empty"}}}

	d, err := r.SelectGateway(tbl, "empty")
	assert.ErrorIs(t, err, ErrNoGateway)
	assert.Empty(t, d)
}

func TestBuildAddress(t *testing.T) {
	testCases := []struct {
		description string
		number      string
		carrier     string
		config      Config
		expected    string
		expectedErr error
	}{
		{
			description: "att",
			number:      "8663454897",
			carrier:     "att",
			expected:    "8663454897@txt.att.net",
		},
		{
			description: "sprint",
			number:      "8663454897",
			carrier:     "sprint",
			expected:    "8663454897@messaging.sprintpcs.com",
		},
		{
			description: "virgin mobile",
			number:      "8663454897",
			carrier:     "virgin mobile",
			expected:    "8663454897@vmobl.com",
		},
		{
			description: "att with MMS preferred",
			number:      "8663454897",
			carrier:     "att",
			config:      Config{PreferMMS: true},
			expected:    "8663454897@mms.att.net",
		},
		{
			description: "whitespace is trimmed",
			number:      " 8663454897 ",
			carrier:     " att ",
			expected:    "8663454897@txt.att.net",
		},
		{
			description: "no number or carrier",
			expectedErr: ErrInvalidNumber,
		},
		{
			description: "no number",
			carrier:     "att",
			expectedErr: ErrInvalidNumber,
		},
		{
			description: "letters for a number",
			number:      "abcdefg",
			carrier:     "sprint",
			expectedErr: ErrInvalidNumber,
		},
		{
			description: "no carrier",
			number:      "8663454897",
			expectedErr: ErrUnknownCarrier,
		},
		{
			description: "not a carrier",
			number:      "8663454897",
			carrier:     "not a carrier",
			expectedErr: ErrUnknownCarrier,
		},
		{
			description: "missing gateway file",
			number:      "8663454897",
			carrier:     "att",
			config:      Config{GatewaysPath: filepath.Join(os.TempDir(), "no-such-dir", "gateways.json")},
			expectedErr: ErrNoGateways,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			r := newTestResolver(t, tc.config)
			a, err := r.BuildAddress(tc.number, tc.carrier)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, a)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, a)
		})
	}
}

func TestBuildAddress_Deterministic(t *testing.T) {
	r := newTestResolver(t, Config{})

	inputs := [][2]string{
		{"8663454897", "att"},
		{"8663454897", "not a carrier"},
		{"abcdefg", "sprint"},
	}

	for _, in := range inputs {
		a1, err1 := r.BuildAddress(in[0], in[1])
		a2, err2 := r.BuildAddress(in[0], in[1])
		assert.Equal(t, a1, a2)
		assert.Equal(t, err1 == nil, err2 == nil)
		if err1 != nil && err2 != nil {
			assert.Equal(t, err1.Error(), err2.Error())
		}
	}
}

func TestBuildAddress_Diagnostics(t *testing.T) {
	testCases := []struct {
		description string
		quiet       bool
		expectLogs  bool
	}{
		{"reports failures", false, true},
		{"quiet", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var buf bytes.Buffer
			r, err := New(Config{Quiet: tc.quiet}, zerolog.New(&buf))
			require.NoError(t, err)

			_, err = r.BuildAddress("8663454897", "not a carrier")
			require.Error(t, err)

			if tc.expectLogs {
				assert.Contains(t, buf.String(), "not a carrier")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestNew_InvalidRegion(t *testing.T) {
	_, err := New(Config{Region: "United States"}, zerolog.Nop())
	assert.Error(t, err)
}
