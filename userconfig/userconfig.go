package userconfig

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/ptgott/mail-to-sms/email"
	"github.com/ptgott/mail-to-sms/resolve"
	"github.com/ptgott/mail-to-sms/storage"
	"github.com/rs/zerolog/log"

	yaml "gopkg.in/yaml.v2"
)

const (
	// Used when the user doesn't configure a mail server
	defaultSMTPHost = "smtp.gmail.com"
	defaultSMTPPort = "587"

	// Environment variables for credentials, so they don't have to live in
	// the config file or shell history
	usernameEnv = "MAILTOSMS_USERNAME"
	passwordEnv = "MAILTOSMS_PASSWORD"
)

// Meta represents all current config options that the application can use,
// i.e., after validation and parsing
type Meta struct {
	EmailSettings email.UserConfig `yaml:"email"`
	Resolution    resolve.Config   `yaml:"resolution"`
	Storage       storage.KVConfig `yaml:"storage"`
	// Log messages instead of sending them. Not read from the file.
	DryRun bool `yaml:"-"`
}

// Parse generates usable configurations from possibly arbitrary user input.
// An error indicates a problem with parsing or validation. The Reader r
// can be either JSON or YAML. Every section is optional, and an empty
// document yields an empty Meta.
func Parse(r io.Reader) (*Meta, error) {
	var m Meta
	err := yaml.NewDecoder(r).Decode(&m)
	if errors.Is(err, io.EOF) {
		log.Debug().Msg("the config file is empty")
		return &Meta{}, nil
	}
	if err != nil {
		return &Meta{}, fmt.Errorf("can't read the config file as YAML: %v", err)
	}

	return &m, nil
}

// ParseFile reads the config at path. A missing file isn't an error, since
// flags and the environment can supply everything.
func ParseFile(path string) (*Meta, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("config-path", path).Msg("no config file, using defaults")
		return &Meta{}, nil
	}
	if err != nil {
		return &Meta{}, fmt.Errorf("can't open the config file: %v", err)
	}
	defer f.Close()

	return Parse(f)
}

// LoadEnv fills in credentials that m lacks from the environment, first
// loading any .env files named in envFiles (or ./.env if none are named).
// Missing .env files are ignored.
func (m *Meta) LoadEnv(envFiles ...string) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", f).Msg("can't load the env file")
		}
	}

	if m.EmailSettings.UserName == "" {
		m.EmailSettings.UserName = os.Getenv(usernameEnv)
	}
	if m.EmailSettings.Password == "" {
		m.EmailSettings.Password = os.Getenv(passwordEnv)
	}
}

// CheckAndSetDefaults validates m and either returns a copy of m with default
// settings applied or returns an error due to an invalid configuration
func (m *Meta) CheckAndSetDefaults() (Meta, error) {
	c := Meta{
		Storage: m.Storage,
		DryRun:  m.DryRun,
	}

	r, err := m.Resolution.CheckAndSetDefaults()
	if err != nil {
		return Meta{}, err
	}
	c.Resolution = r

	e := m.EmailSettings
	if e.SMTPServerHost == "" {
		e.SMTPServerHost = defaultSMTPHost
		if e.SMTPServerPort == "" {
			e.SMTPServerPort = defaultSMTPPort
		}
	}

	// We don't talk to the mail server in a dry run, so its settings can
	// be incomplete.
	if !c.DryRun {
		e, err = e.CheckAndSetDefaults()
		if err != nil {
			return Meta{}, err
		}
	}
	c.EmailSettings = e

	return c, nil
}
