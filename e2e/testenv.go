package e2e

import (
	"testing"

	"github.com/ptgott/mail-to-sms/email"
	"github.com/ptgott/mail-to-sms/smtptest"
	"github.com/ptgott/mail-to-sms/storage"
	"github.com/ptgott/mail-to-sms/userconfig"
)

// testEnvironment manages all dependencies required to simulate a "real"
// environment and run the e2e tests. Callers should create this via
// startTestEnvironment.
type testEnvironment struct {
	SMTPServer  *smtptest.InProcessServer
	tempDirPath string // must be populated programmatically
}

// startTestEnvironment spins up an SMTP server and a storage directory.
// Both are cleaned up when t finishes.
func startTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()

	return &testEnvironment{
		SMTPServer:  smtptest.StartServer(t),
		tempDirPath: t.TempDir(),
	}
}

// options returns appConfigOptions pointing at the environment's SMTP server
// and storage directory.
func (te *testEnvironment) options() appConfigOptions {
	return appConfigOptions{
		SMTPServerAddress: te.SMTPServer.Address(),
		StorageDir:        te.tempDirPath,
	}
}

// transport returns an SMTP transport for config
func (te *testEnvironment) transport(t *testing.T, config userconfig.Meta) email.Transport {
	t.Helper()

	st, err := email.NewSMTPTransport(config.EmailSettings)
	if err != nil {
		t.Fatalf("can't create the SMTP transport: %v", err)
	}
	return st
}

// openHistory opens the send history for config. The caller must close it.
func (te *testEnvironment) openHistory(t *testing.T, config userconfig.Meta) *storage.History {
	t.Helper()

	db, err := storage.Open(&config.Storage)
	if err != nil {
		t.Fatalf("can't open the send history: %v", err)
	}
	return storage.NewHistory(db)
}
