package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ptgott/mail-to-sms/phone"
)

// DefaultRegion is used to parse numbers when the user doesn't specify a
// region.
const DefaultRegion = "US"

// NoRegion tells the resolver that numbers include their own country code,
// e.g., "+1 866 345 4897".
const NoRegion = phone.NoRegion

// Config contains options for resolving a single destination address. Use
// CheckAndSetDefaults before relying on the zero value.
type Config struct {
	// ISO 3166-1 alpha-2 region used to parse numbers that lack a country
	// code.
	Region string
	// Send to the carrier's MMS gateway instead of its SMS gateway. We fall
	// back to the other gateway if the carrier lacks the preferred one.
	PreferMMS bool
	// Optional subject line for the outgoing email.
	Subject string
	// Don't log diagnostics.
	Quiet bool
	// Path to a gateway table to use instead of the built-in one.
	GatewaysPath string
}

// UnmarshalYAML parses a user-provided YAML configuration, returning any
// parsing errors.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	err := unmarshal(&v)

	if err != nil {
		return fmt.Errorf("can't parse the resolution config: %v", err)
	}

	c.Region = v["region"]
	c.Subject = v["subject"]
	c.GatewaysPath = v["gatewaysFile"]

	if m, ok := v["mms"]; ok {
		b, err := strconv.ParseBool(m)
		if err != nil {
			return fmt.Errorf("can't parse the mms setting as a boolean: %v", err)
		}
		c.PreferMMS = b
	}

	if q, ok := v["quiet"]; ok {
		b, err := strconv.ParseBool(q)
		if err != nil {
			return fmt.Errorf("can't parse the quiet setting as a boolean: %v", err)
		}
		c.Quiet = b
	}

	return nil
}

// CheckAndSetDefaults validates c and either returns a copy of c with default
// settings applied or returns an error due to an invalid configuration
func (c *Config) CheckAndSetDefaults() (Config, error) {
	n := *c

	n.Region = strings.ToUpper(strings.TrimSpace(n.Region))
	if n.Region == "" {
		n.Region = DefaultRegion
	}

	if len(n.Region) != 2 {
		return Config{}, fmt.Errorf(
			"the region must be a two-letter code like %q, but got %q",
			DefaultRegion,
			c.Region,
		)
	}

	for _, r := range n.Region {
		if r < 'A' || r > 'Z' {
			return Config{}, fmt.Errorf("the region %q must contain only letters", c.Region)
		}
	}

	return n, nil
}
