package mailtosms

import (
	"errors"

	"github.com/ptgott/mail-to-sms/email"
	"github.com/ptgott/mail-to-sms/html"
	"github.com/ptgott/mail-to-sms/resolve"
	"github.com/ptgott/mail-to-sms/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Credentials for the mail server. An empty Username skips authentication.
type Credentials struct {
	Username string
	Password string
}

// Client sends messages to a single resolved gateway address. Create one
// with New and Close it when done.
type Client struct {
	address    string
	subject    string
	conn       email.Connection
	dispatcher email.Dispatcher
	history    *storage.History
	log        zerolog.Logger
	// number of messages the mail server accepted
	sent int
	last storage.SendRecord
}

type options struct {
	logger   zerolog.Logger
	history  *storage.History
	contents *html.Contents
}

// Option configures New.
type Option func(*options)

// WithLogger sends diagnostics to l instead of the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHistory records every accepted message in h.
func WithHistory(h *storage.History) Option {
	return func(o *options) {
		o.history = h
	}
}

// WithContents sends c as soon as the Client is ready. Use Sent on the
// returned Client to see whether it went out.
func WithContents(c html.Contents) Option {
	return func(o *options) {
		o.contents = &c
	}
}

// New resolves the gateway address for number and carrier using cfg and
// connects to the mail server through t. It returns the first error it runs
// into, which wraps one of the resolve errors for a bad number or carrier.
// Diagnostics are logged unless cfg.Quiet is set.
func New(
	number string,
	carrier string,
	creds Credentials,
	cfg resolve.Config,
	t email.Transport,
	opts ...Option,
) (*Client, error) {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Quiet {
		o.logger = zerolog.Nop()
	}
	if o.history == nil {
		o.history = storage.NewHistory(nil)
	}

	r, err := resolve.New(cfg, o.logger)
	if err != nil {
		o.logger.Error().Err(err).Msg("invalid resolution config")
		return nil, err
	}

	a, err := r.BuildAddress(number, carrier)
	if err != nil {
		return nil, err
	}

	if t == nil {
		err := errors.New("no mail transport was provided")
		o.logger.Error().Err(err).Msg("can't connect to the mail server")
		return nil, err
	}

	conn, err := t.Connect(creds.Username, creds.Password)
	if err != nil {
		// You might want to look into using an app password for this.
		o.logger.Error().
			Err(err).
			Str("username", creds.Username).
			Msg("can't connect to the mail server")
		return nil, err
	}

	c := &Client{
		address:    a,
		subject:    r.Config().Subject,
		conn:       conn,
		dispatcher: email.NewDispatcher(o.logger),
		history:    o.history,
		log:        o.logger,
	}

	if o.contents != nil && !o.contents.IsEmpty() {
		c.Send(*o.contents)
	}

	return c, nil
}

// Address returns the gateway address the Client sends to, e.g.,
// "8663454897@txt.att.net".
func (c *Client) Address() string {
	return c.address
}

// Send sends contents to the gateway address and reports whether the mail
// server accepted it. Failures are logged, never returned.
func (c *Client) Send(contents html.Contents) bool {
	if !c.dispatcher.Send(c.conn, c.address, c.subject, contents) {
		return false
	}
	c.sent++

	r, err := c.history.Record(c.address, c.subject)
	switch {
	case errors.Is(err, storage.ErrNoOp):
	case err != nil:
		// The message still went out, so this doesn't count as a failure
		c.log.Warn().Err(err).Msg("can't record the message in the send history")
	default:
		c.last = r
		c.log.Debug().Str("id", r.ID.String()).Msg("recorded the message in the send history")
	}

	return true
}

// Sent returns the number of messages the mail server has accepted from the
// Client.
func (c *Client) Sent() int {
	return c.sent
}

// LastRecord returns the send history record for the most recent message
// the mail server accepted. The second return value is false if nothing has
// been recorded, e.g., because history is disabled.
func (c *Client) LastRecord() (storage.SendRecord, bool) {
	return c.last, c.last.Address != ""
}

// Close closes the connection to the mail server. It doesn't close the
// history passed to WithHistory.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendOnce resolves the gateway address, connects, sends contents and
// disconnects, reporting whether the mail server accepted the message.
func SendOnce(
	number string,
	carrier string,
	creds Credentials,
	cfg resolve.Config,
	t email.Transport,
	contents html.Contents,
	opts ...Option,
) bool {
	c, err := New(number, carrier, creds, cfg, t, opts...)
	if err != nil {
		return false
	}
	defer c.Close()
	return c.Send(contents)
}
