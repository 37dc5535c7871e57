package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ptgott/mail-to-sms/html"

	gomail "gopkg.in/gomail.v2"
)

const (
	smtpScheme  string = "smtp"
	smtpsScheme string = "smtps"
)

// Transport opens connections to a mail server. Implementations only need
// to honor this contract, not any particular protocol.
type Transport interface {
	// Connect authenticates with username and password. An empty username
	// skips authentication.
	Connect(username string, password string) (Connection, error)
}

// Connection sends messages over an open connection. The caller must Close
// it.
type Connection interface {
	// Send transmits one message. A nil error means the server accepted
	// it, not that it reached the phone.
	Send(to string, subject string, contents html.Contents) error
	Close() error
}

// UserConfig represents config options provided by
// the user. Not meant to be used directly for sending
// email without validation.
type UserConfig struct {
	SMTPServerHost string
	SMTPServerPort string
	UserName       string
	Password       string
	FromAddress    string
	// Use implicit TLS instead of STARTTLS. Set automatically for the
	// smtps:// scheme.
	SSL bool
	// Skip verifying the server's certificate, e.g., for a self-signed
	// relay
	SkipCertVerification bool
	// Always attach an HTML alternative rendered from the message lines
	HTMLAlternative bool
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. Validation is
// performed here.
func (uc *UserConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	err := unmarshal(&v)

	if err != nil {
		return fmt.Errorf("can't parse the email config: %v", err)
	}

	// An absent server stays empty for the caller to default.
	if ra := v["smtpServerAddress"]; ra != "" {
		host, port, ssl, err := parseServerAddress(ra)
		if err != nil {
			return err
		}
		uc.SMTPServerHost = host
		uc.SMTPServerPort = port
		uc.SSL = ssl
	}

	uc.UserName = v["username"]
	uc.Password = v["password"]
	uc.FromAddress = v["fromAddress"]

	for k, dst := range map[string]*bool{
		"ssl":                  &uc.SSL,
		"skipCertVerification": &uc.SkipCertVerification,
		"htmlAlternative":      &uc.HTMLAlternative,
	} {
		s, ok := v[k]
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("can't parse %v as a boolean: %v", k, err)
		}
		// ssl: false can't turn off an smtps:// scheme
		*dst = *dst || b
	}

	return nil
}

// parseServerAddress splits an smtp:// or smtps:// address (or a bare
// host:port) into its host and port, reporting whether the scheme calls for
// implicit TLS.
func parseServerAddress(ra string) (host string, port string, ssl bool, err error) {
	// Don't require the user to include a scheme. If we can't
	// find one, use one for SMTP.
	if !strings.Contains(ra, "://") {
		ra = smtpScheme + "://" + ra
	}

	u, err := url.Parse(ra)
	if err != nil {
		return "", "", false, fmt.Errorf("can't parse the SMTP server address: %v", err)
	}

	switch u.Scheme {
	case smtpScheme:
	case smtpsScheme:
		ssl = true
	default:
		return "", "", false, fmt.Errorf("the SMTP server address has an unsupported scheme: %v", u.Scheme)
	}

	if u.Port() == "" {
		return "", "", false, errors.New("the SMTP server address must include a port")
	}

	return u.Hostname(), u.Port(), ssl, nil
}

// CheckAndSetDefaults validates uc and either returns a copy of uc with
// default settings applied or returns an error due to an invalid
// configuration
func (uc *UserConfig) CheckAndSetDefaults() (UserConfig, error) {
	c := *uc

	if c.SMTPServerHost == "" {
		return UserConfig{}, errors.New("must supply an SMTP server host")
	}

	p, err := strconv.Atoi(c.SMTPServerPort)
	if err != nil || p <= 0 || p > 65535 {
		return UserConfig{}, fmt.Errorf("the SMTP server port is invalid: %q", c.SMTPServerPort)
	}

	if (c.UserName == "") != (c.Password == "") {
		return UserConfig{}, errors.New("must supply both a username and a password, or neither")
	}

	// Mail providers like Gmail log users in with their address, so that's
	// a reasonable sender.
	if c.FromAddress == "" && strings.Contains(c.UserName, "@") {
		c.FromAddress = c.UserName
	}

	if c.FromAddress == "" {
		return UserConfig{}, errors.New("must supply a \"from\" address")
	}

	return c, nil
}

// SMTPTransport implements Transport for an SMTP relay. Create one with
// NewSMTPTransport.
type SMTPTransport struct {
	host            string
	port            int
	from            string
	ssl             bool
	tlsConfig       *tls.Config
	htmlAlternative bool
}

// NewSMTPTransport validates uc and returns a Transport for the relay it
// describes.
func NewSMTPTransport(uc UserConfig) (*SMTPTransport, error) {
	c, err := uc.CheckAndSetDefaults()
	if err != nil {
		return &SMTPTransport{}, err
	}

	// Already checked by CheckAndSetDefaults
	p, _ := strconv.Atoi(c.SMTPServerPort)

	return &SMTPTransport{
		host: c.SMTPServerHost,
		port: p,
		from: c.FromAddress,
		// Port 465 is for implicit TLS by convention
		ssl: c.SSL || p == 465,
		tlsConfig: &tls.Config{
			ServerName:         c.SMTPServerHost,
			InsecureSkipVerify: c.SkipCertVerification,
		},
		htmlAlternative: c.HTMLAlternative,
	}, nil
}

// Connect implements Transport. It dials the relay, negotiates TLS and
// authenticates, so credential problems surface before anything is sent.
func (st *SMTPTransport) Connect(username string, password string) (Connection, error) {
	d := gomail.Dialer{
		Host:      st.host,
		Port:      st.port,
		Username:  username,
		Password:  password,
		SSL:       st.ssl,
		TLSConfig: st.tlsConfig,
	}

	sc, err := d.Dial()
	if err != nil {
		return nil, fmt.Errorf("can't connect to the SMTP server at %v:%v: %w", st.host, st.port, err)
	}

	return &smtpConnection{
		sender:          sc,
		from:            st.from,
		htmlAlternative: st.htmlAlternative,
	}, nil
}

// smtpConnection implements Connection with an open gomail connection.
type smtpConnection struct {
	sender          gomail.SendCloser
	from            string
	htmlAlternative bool
}

// Send implements Connection. The text/plain part always comes first since
// that's what most gateways forward to the phone.
func (sc *smtpConnection) Send(to string, subject string, contents html.Contents) error {
	m := gomail.NewMessage()
	m.SetHeader("From", sc.from)
	m.SetHeader("To", to)
	if subject != "" {
		m.SetHeader("Subject", subject)
	}
	m.SetBody("text/plain", contents.GenerateText())

	if contents.HTML != "" || sc.htmlAlternative {
		b, err := contents.GenerateBody()
		if err != nil {
			return fmt.Errorf("can't generate the HTML body: %w", err)
		}
		m.AddAlternative("text/html", b)
	}

	if err := gomail.Send(sc.sender, m); err != nil {
		return fmt.Errorf("can't send to %v: %w", to, err)
	}
	return nil
}

// Close implements Connection.
func (sc *smtpConnection) Close() error {
	return sc.sender.Close()
}
