package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ptgott/mail-to-sms/gateway"
	"github.com/ptgott/mail-to-sms/phone"
	"github.com/rs/zerolog"
)

var (
	// ErrNoGateways means the gateway table couldn't be loaded or was
	// empty.
	ErrNoGateways = errors.New("no gateways are available")
	// ErrInvalidNumber means the phone number failed parsing or numbering
	// plan checks.
	ErrInvalidNumber = errors.New("invalid phone number")
	// ErrUnknownCarrier means no gateway lists the carrier name.
	ErrUnknownCarrier = errors.New("unrecognized carrier")
	// ErrNoGateway means the carrier has no SMS or MMS domain.
	ErrNoGateway = errors.New("no gateway for the carrier")
)

// Resolver builds gateway addresses. It holds no mutable state, so a single
// Resolver can serve any number of calls. Create one with New.
type Resolver struct {
	config Config
	log    zerolog.Logger
}

// New returns a Resolver that uses c after applying defaults. Diagnostics go
// to logger unless c.Quiet is set.
func New(c Config, logger zerolog.Logger) (Resolver, error) {
	cc, err := c.CheckAndSetDefaults()
	if err != nil {
		return Resolver{}, err
	}

	if cc.Quiet {
		logger = zerolog.Nop()
	}

	return Resolver{
		config: cc,
		log:    logger,
	}, nil
}

// Config returns the configuration the Resolver uses, with defaults applied.
func (r Resolver) Config() Config {
	return r.config
}

// ValidateNumber reports whether number is a possible and valid phone number
// in the configured region.
func (r Resolver) ValidateNumber(number string) bool {
	number = strings.TrimSpace(number)
	ok, err := phone.Validate(number, r.config.Region)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("number", number).
			Str("region", r.config.Region).
			Msg("can't parse the phone number")
		return false
	}
	if !ok {
		r.log.Error().
			Str("number", number).
			Str("region", r.config.Region).
			Msgf("'%v' isn't a valid phone number", number)
	}
	return ok
}

// ValidateCarrier reports whether carrier, minus surrounding whitespace,
// exactly matches a carrier name in t.
func (r Resolver) ValidateCarrier(t gateway.Table, carrier string) bool {
	carrier = strings.TrimSpace(carrier)
	if carrier != "" {
		if _, ok := t.Lookup(carrier); ok {
			return true
		}
	}

	r.log.Error().
		Str("carrier", carrier).
		Msgf("'%v' isn't a valid carrier", carrier)
	return false
}

// SelectGateway returns the gateway domain for carrier, honoring the
// configured MMS preference.
func (r Resolver) SelectGateway(t gateway.Table, carrier string) (string, error) {
	carrier = strings.TrimSpace(carrier)
	e, ok := t.Lookup(carrier)
	if !ok {
		r.log.Error().
			Str("carrier", carrier).
			Msg("carrier doesn't have any valid SMS or MMS gateways")
		return "", fmt.Errorf("%w %q", ErrNoGateway, carrier)
	}

	d := e.Domain(r.config.PreferMMS)
	if d == "" {
		r.log.Error().
			Str("carrier", carrier).
			Msg("carrier doesn't have any valid SMS or MMS gateways")
		return "", fmt.Errorf("%w %q", ErrNoGateway, carrier)
	}

	return d, nil
}

// BuildAddress returns the gateway email address for number and carrier,
// e.g., "8663454897@txt.att.net". It reloads the gateway table on every
// call and stops at the first failed check, returning an error that wraps
// one of ErrNoGateways, ErrInvalidNumber, ErrUnknownCarrier or ErrNoGateway.
func (r Resolver) BuildAddress(number string, carrier string) (string, error) {
	number = strings.TrimSpace(number)
	carrier = strings.TrimSpace(carrier)

	t := gateway.Load(r.config.GatewaysPath, r.log)
	if len(t) == 0 {
		return "", ErrNoGateways
	}

	if !r.ValidateNumber(number) {
		return "", fmt.Errorf("%w %q", ErrInvalidNumber, number)
	}

	if !r.ValidateCarrier(t, carrier) {
		return "", fmt.Errorf("%w %q", ErrUnknownCarrier, carrier)
	}

	d, err := r.SelectGateway(t, carrier)
	if err != nil {
		return "", err
	}

	a := number + "@" + d
	r.log.Debug().
		Str("address", a).
		Msg("resolved the gateway address")

	return a, nil
}
