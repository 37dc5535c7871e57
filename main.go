package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ptgott/mail-to-sms/email"
	"github.com/ptgott/mail-to-sms/html"
	"github.com/ptgott/mail-to-sms/mailtosms"
	"github.com/ptgott/mail-to-sms/storage"
	"github.com/ptgott/mail-to-sms/userconfig"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Log with filename and line number. This writes to stderr, so it should
	// be thread safe.
	// https://github.com/rs/zerolog/blob/7ccd4c940bf8a02fcc5f10e5475f9d3daff04d57/log/log.go#L13
	log.Logger = log.With().Caller().Logger()

	// Intercept interrupts so we can get more visibility into them.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func(c chan os.Signal) {
		<-sigCh
		log.Info().Msg("interrupt: exiting")
		Exit(ExitFailure)
	}(sigCh)

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	failure(os.Stderr, err)
	Exit(exitCode(err))
}

// run sends a single message as described by args and returns an ExitError
// for anything that stops it from going out.
func run(args []string, stdout io.Writer, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	switch cli.level {
	case "debug":
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	case "warn":
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
	default:
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	log.Debug().
		Str("configPath", cli.configPath).
		Msg("starting the application")

	config, err := userconfig.ParseFile(cli.configPath)
	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem parsing your config")
		return Fatalf(ExitFailure, "can't read %v: %v", cli.configPath, err)
	}
	config.LoadEnv()
	cli.apply(config)

	checkedConfig, err := config.CheckAndSetDefaults()
	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem validating your config")
		return Fatalf(ExitFailure, "invalid configuration: %v", err)
	}

	if cli.history {
		return listHistory(stdout, &checkedConfig.Storage)
	}

	var t email.Transport
	if checkedConfig.DryRun {
		t = email.LogTransport{Log: log.Logger}
	} else {
		st, err := email.NewSMTPTransport(checkedConfig.EmailSettings)
		if err != nil {
			return Fatalf(ExitFailure, "can't set up the mail server connection: %v", err)
		}
		t = st
		statusf(stdout, "using %v:%v", checkedConfig.EmailSettings.SMTPServerHost, checkedConfig.EmailSettings.SMTPServerPort)
	}

	db, err := storage.Open(&checkedConfig.Storage)
	if err != nil {
		log.Error().
			Err(err).
			Str("storageDir", checkedConfig.Storage.StorageDirPath).
			Msg("can't open the send history")
		return Fatalf(ExitFailure, "can't open the send history: %v", err)
	}
	history := storage.NewHistory(db)
	defer func() {
		if err := history.Close(); err != nil {
			log.Warn().Err(err).Msg("problem closing the send history")
		}
	}()

	c, err := mailtosms.New(
		cli.number,
		cli.carrier,
		mailtosms.Credentials{
			Username: checkedConfig.EmailSettings.UserName,
			Password: checkedConfig.EmailSettings.Password,
		},
		checkedConfig.Resolution,
		t,
		mailtosms.WithHistory(history),
		mailtosms.WithContents(html.Text(cli.message)),
	)
	if err != nil {
		return Fatalf(ExitFailure, "can't send to %v on %v: %v", cli.number, cli.carrier, err)
	}
	defer c.Close()

	statusf(stdout, "resolved %v", c.Address())

	if c.Sent() == 0 {
		return ExitError{
			err:  errors.New("the mail server didn't accept the message"),
			exit: ExitFailure,
		}
	}

	r, recorded := c.LastRecord()
	switch {
	case recorded:
		successf(stdout, "sent to %v (%v)", c.Address(), r.ID)
	case history.Enabled():
		successf(stdout, "sent to %v, but it's missing from the send history", c.Address())
	default:
		successf(stdout, "sent to %v", c.Address())
	}

	return nil
}

// listHistory prints every record in the send history configured by conf
func listHistory(stdout io.Writer, conf *storage.KVConfig) error {
	if conf.StorageDirPath == "" {
		return Fatalf(ExitFailure, "there's no storage directory in your config, so there's no history")
	}

	db, err := storage.Open(conf)
	if err != nil {
		return Fatalf(ExitFailure, "can't open the send history: %v", err)
	}
	history := storage.NewHistory(db)
	defer history.Close()

	records, err := history.List()
	if err != nil {
		return Fatalf(ExitFailure, "can't read the send history: %v", err)
	}

	statusf(stdout, "%d messages in %v", len(records), conf.StorageDirPath)
	for _, r := range records {
		line := fmt.Sprintf("%v %v", r.SentAt.Local().Format(time.RFC3339), r.Address)
		if r.Subject != "" {
			line += fmt.Sprintf(" (%v)", r.Subject)
		}
		successf(stdout, "%s", line)
	}
	return nil
}
