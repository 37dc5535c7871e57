package email

import (
	"github.com/ptgott/mail-to-sms/html"
	"github.com/rs/zerolog"
)

// LogTransport logs messages instead of sending them. Useful for checking
// which gateway address a number resolves to without a mail server.
type LogTransport struct {
	Log zerolog.Logger
}

// Connect implements Transport. It never fails.
func (lt LogTransport) Connect(username string, _ string) (Connection, error) {
	lt.Log.Info().
		Str("username", username).
		Msg("EMAIL (dry run - not connecting to a server)")
	return logConnection(lt), nil
}

type logConnection LogTransport

// Send implements Connection.
func (lc logConnection) Send(to string, subject string, contents html.Contents) error {
	lc.Log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("text", contents.GenerateText()).
		Msg("EMAIL (dry run - not actually sent)")
	return nil
}

// Close implements Connection.
func (lc logConnection) Close() error {
	return nil
}
