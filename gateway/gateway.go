package gateway

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v2"
)

// The default table, compiled into the binary so it is always available
// regardless of the working directory.
//
//go:embed gateways.json
var defaultTable []byte

// Entry maps one or more carrier names to that carrier's gateway domains.
// At least one of SMS and MMS is set.
type Entry struct {
	// Names a user can give for the carrier, e.g., "verizon wireless".
	// Matching is exact and case-sensitive.
	CarrierNames []string
	SMS          string
	MMS          string
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. Validation is
// performed here.
func (e *Entry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v struct {
		CarrierNames []string `yaml:"carrier_names"`
		SMS          string   `yaml:"sms"`
		MMS          string   `yaml:"mms"`
	}

	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the gateway entry: %v", err)
	}

	if len(v.CarrierNames) == 0 {
		return errors.New("each gateway must include at least one carrier name")
	}

	for _, n := range v.CarrierNames {
		if n == "" {
			return errors.New("carrier names can't be blank")
		}
	}

	if v.SMS == "" && v.MMS == "" {
		return fmt.Errorf(
			"the gateway for %q must include an SMS or MMS domain",
			v.CarrierNames[0],
		)
	}

	e.CarrierNames = v.CarrierNames
	e.SMS = v.SMS
	e.MMS = v.MMS
	return nil
}

// Has reports whether name is one of the entry's carrier names.
func (e Entry) Has(name string) bool {
	for _, n := range e.CarrierNames {
		if n == name {
			return true
		}
	}
	return false
}

// Domain returns the gateway domain to use for the entry. If preferMMS is
// true, the MMS domain is returned when there is one, falling back to the
// SMS domain. Otherwise the SMS domain is returned when there is one,
// falling back to the MMS domain. Returns an empty string if the entry has
// neither.
func (e Entry) Domain(preferMMS bool) string {
	if preferMMS {
		if e.MMS != "" {
			return e.MMS
		}
		return e.SMS
	}
	if e.SMS != "" {
		return e.SMS
	}
	return e.MMS
}

// Table is an ordered list of gateway entries. Don't modify a Table after
// loading it.
type Table []Entry

// Lookup returns the first entry that includes the carrier name.
func (t Table) Lookup(carrier string) (Entry, bool) {
	for _, e := range t {
		if e.Has(carrier) {
			return e, true
		}
	}
	return Entry{}, false
}

// document is the top-level structure of a gateway file. Gateways is a
// pointer so we can tell a missing key apart from an empty list.
type document struct {
	Gateways *[]Entry `yaml:"gateways"`
}

// Decode reads a gateway table from r, which can be either JSON or YAML.
// An error indicates a structural problem with the document.
func Decode(r io.Reader) (Table, error) {
	var d document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, errors.New("the gateway document is empty")
		}
		return Table{}, fmt.Errorf("can't read the gateway document: %v", err)
	}

	if d.Gateways == nil {
		return Table{}, errors.New("the gateway document must include a \"gateways\" list")
	}

	return Table(*d.Gateways), nil
}

// Load reads the gateway table at path, or the built-in table if path is
// empty. Load errors are logged rather than returned: callers get an empty
// Table, which no carrier can match.
func Load(path string, logger zerolog.Logger) Table {
	var r io.Reader
	if path == "" {
		r = bytes.NewReader(defaultTable)
	} else {
		f, err := os.Open(path)
		if err != nil {
			logger.Error().
				Err(err).
				Str("path", path).
				Msg("can't open the gateway file")
			return Table{}
		}
		defer f.Close()
		r = f
	}

	t, err := Decode(r)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("can't load the gateway table")
		return Table{}
	}

	logger.Debug().
		Int("count", len(t)).
		Str("path", path).
		Msg("loaded the gateway table")

	return t
}
