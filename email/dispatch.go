package email

import (
	"github.com/ptgott/mail-to-sms/html"
	"github.com/rs/zerolog"
)

// Dispatcher sends messages through a Connection, reporting failures
// instead of returning them.
type Dispatcher struct {
	log zerolog.Logger
}

// NewDispatcher returns a Dispatcher that reports problems to logger.
func NewDispatcher(logger zerolog.Logger) Dispatcher {
	return Dispatcher{log: logger}
}

// Send makes one attempt to send contents to the address to and reports
// whether the server accepted it. Any failure, including a nil Connection,
// is logged.
func (d Dispatcher) Send(conn Connection, to string, subject string, contents html.Contents) bool {
	if conn == nil {
		d.log.Error().
			Str("to", to).
			Msg("can't send mail without a connection to the mail server")
		return false
	}

	if err := conn.Send(to, subject, contents); err != nil {
		d.log.Error().
			Err(err).
			Str("to", to).
			Msg("error sending mail")
		return false
	}

	d.log.Info().
		Str("to", to).
		Msg("the mail server accepted the message")
	return true
}
