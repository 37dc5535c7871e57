package main

import (
	"io"
	"strings"

	"github.com/ptgott/mail-to-sms/userconfig"
	flag "github.com/spf13/pflag"
)

const usage = `usage: mail-to-sms [flags] PHONE_NUMBER CARRIER MESSAGE
       mail-to-sms [--config PATH] --history

Sends MESSAGE as a text to PHONE_NUMBER through CARRIER's email-to-SMS
gateway. Quote carriers with spaces in their names, e.g., "verizon wireless".

flags:
`

// cliConfig holds the configuration from the commandline
type cliConfig struct {
	configPath string
	username   string
	password   string
	region     string
	subject    string
	level      string
	mms        bool
	quiet      bool
	dryRun     bool
	history    bool

	number  string
	carrier string
	message string

	// names of the flags the user actually set, so we only override
	// the config file for those
	changed map[string]bool
}

// parseFlags reads args (without the program name). Problems come back as
// ExitErrors with ExitFlags.
func parseFlags(args []string, stderr io.Writer) (cliConfig, error) {
	var c cliConfig
	fs := flag.NewFlagSet("mail-to-sms", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&c.configPath, "config", "./config.yaml", "path to a YAML file containing your configuration")
	fs.StringVarP(&c.username, "username", "u", "", "mail server username (or $MAILTOSMS_USERNAME)")
	fs.StringVarP(&c.password, "password", "p", "", "mail server password (or $MAILTOSMS_PASSWORD)")
	fs.StringVar(&c.region, "region", "", "two-letter region for parsing PHONE_NUMBER, ZZ for international format only")
	fs.StringVar(&c.subject, "subject", "", "subject line for the message")
	fs.BoolVar(&c.mms, "mms", false, "prefer the carrier's MMS gateway")
	fs.BoolVar(&c.quiet, "quiet", false, "don't log resolution problems")
	fs.BoolVar(&c.dryRun, "dry-run", false, "log the message instead of sending it")
	fs.BoolVar(&c.history, "history", false, "list the messages in the send history and exit")
	fs.StringVar(&c.level, "level", "info", `log level: "info", "debug", or "warn"`)

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, Fatalf(ExitFlags, "%v", err)
	}

	pos := fs.Args()
	switch {
	case c.history && len(pos) != 0:
		fs.Usage()
		return cliConfig{}, Fatalf(ExitFlags, "--history doesn't take arguments")
	case c.history:
	case len(pos) != 3:
		fs.Usage()
		return cliConfig{}, Fatalf(ExitFlags, "expected PHONE_NUMBER, CARRIER and MESSAGE but got %d arguments", len(pos))
	default:
		c.number, c.carrier, c.message = pos[0], pos[1], pos[2]
	}

	if !c.history && strings.TrimSpace(c.message) == "" {
		return cliConfig{}, Fatalf(ExitFlags, "MESSAGE is empty, so there's nothing to send")
	}

	switch c.level {
	case "info", "debug", "warn":
	default:
		return cliConfig{}, Fatalf(ExitFlags, "invalid value for --level: '%s'", c.level)
	}

	c.changed = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		c.changed[f.Name] = true
	})

	return c, nil
}

// apply overrides m with the flags the user set
func (c cliConfig) apply(m *userconfig.Meta) {
	if c.username != "" {
		m.EmailSettings.UserName = c.username
	}
	if c.password != "" {
		m.EmailSettings.Password = c.password
	}
	if c.changed["region"] {
		m.Resolution.Region = strings.TrimSpace(c.region)
	}
	if c.changed["subject"] {
		m.Resolution.Subject = c.subject
	}
	if c.changed["mms"] {
		m.Resolution.PreferMMS = c.mms
	}
	if c.changed["quiet"] {
		m.Resolution.Quiet = c.quiet
	}
	// Listing the history never talks to the mail server
	m.DryRun = c.dryRun || c.history
}
