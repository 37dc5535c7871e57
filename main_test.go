package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ptgott/mail-to-sms/smtptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config file that points at srv and returns its path
func writeConfig(t *testing.T, srv *smtptest.InProcessServer) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	conf := fmt.Sprintf(`---
email:
    smtpServerAddress: %v
    fromAddress: me@example.com
    username: me@example.com
    password: hunter2
    skipCertVerification: true
resolution:
    subject: hello
storage:
    storageDir: %v
    keyTTL: "1h"
`, srv.Address(), t.TempDir())
	require.NoError(t, os.WriteFile(p, []byte(conf), 0o600))
	return p
}

func TestRun(t *testing.T) {
	t.Setenv("MAILTOSMS_USERNAME", "")
	t.Setenv("MAILTOSMS_PASSWORD", "")

	srv := smtptest.StartServer(t)
	conf := writeConfig(t, srv)
	missing := filepath.Join(t.TempDir(), "config.yaml")

	testCases := []struct {
		description  string
		args         []string
		expectedCode ExitCode
		// substring of stdout, if not empty
		expectedOut string
	}{
		{
			description:  "att",
			args:         []string{"--config", conf, "8663454897", "att", "hi there"},
			expectedCode: ExitOk,
			expectedOut:  "8663454897@txt.att.net",
		},
		{
			description:  "verizon mms",
			args:         []string{"--config", conf, "--mms", "866-345-4897", "verizon wireless", "hi there"},
			expectedCode: ExitOk,
			expectedOut:  "866-345-4897@vzwpix.com",
		},
		{
			description:  "dry run without a config file",
			args:         []string{"--config", missing, "--dry-run", "8663454897", "sprint", "hi"},
			expectedCode: ExitOk,
			expectedOut:  "8663454897@messaging.sprintpcs.com",
		},
		{
			description:  "unknown carrier",
			args:         []string{"--config", conf, "--quiet", "8663454897", "not a carrier", "hi"},
			expectedCode: ExitFailure,
		},
		{
			description:  "invalid number",
			args:         []string{"--config", conf, "abcdefg", "sprint", "hi"},
			expectedCode: ExitFailure,
		},
		{
			description:  "number in another region",
			args:         []string{"--config", conf, "--region", "GB", "8663454897", "att", "hi"},
			expectedCode: ExitFailure,
		},
		{
			description:  "missing arguments",
			args:         []string{"--config", conf, "8663454897", "att"},
			expectedCode: ExitFlags,
		},
		{
			description:  "empty message",
			args:         []string{"--config", conf, "8663454897", "att", ""},
			expectedCode: ExitFlags,
		},
		{
			description:  "blank message",
			args:         []string{"--config", conf, "8663454897", "att", " \n\t"},
			expectedCode: ExitFlags,
		},
		{
			description:  "unknown flag",
			args:         []string{"--nope", "8663454897", "att", "hi"},
			expectedCode: ExitFlags,
		},
		{
			description:  "bad log level",
			args:         []string{"--level", "loud", "8663454897", "att", "hi"},
			expectedCode: ExitFlags,
		},
		{
			description:  "history without a storage directory",
			args:         []string{"--config", missing, "--history"},
			expectedCode: ExitFailure,
		},
		{
			description:  "history with arguments",
			args:         []string{"--config", conf, "--history", "8663454897"},
			expectedCode: ExitFlags,
		},
		{
			description:  "no from address",
			args:         []string{"--config", missing, "8663454897", "att", "hi"},
			expectedCode: ExitFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tc.args, &stdout, &stderr)

			if c := exitCode(err); c != tc.expectedCode {
				t.Fatalf(
					"unexpected exit code: wanted %v but got %v with error %v",
					tc.expectedCode,
					c,
					err,
				)
			}

			if tc.expectedOut != "" {
				assert.Contains(t, stdout.String(), tc.expectedOut)
			}
		})
	}
}

func TestRun_DeliversMessage(t *testing.T) {
	t.Setenv("MAILTOSMS_USERNAME", "")
	t.Setenv("MAILTOSMS_PASSWORD", "")

	srv := smtptest.StartServer(t)
	conf := writeConfig(t, srv)
	start := time.Now().Add(-time.Second).UnixNano()

	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", conf, "8663454897", "sprint", "meet at noon"}, &stdout, &stderr)
	require.NoError(t, err)

	msgs := srv.RetrieveMessages(start)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"8663454897@messaging.sprintpcs.com"}, msgs[0].To)
	assert.Contains(t, msgs[0].Body, "Subject: hello")
	assert.Contains(t, msgs[0].Body, "meet at noon")

	stdout.Reset()
	err = run([]string{"--config", conf, "--history"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "1 messages")
	assert.Contains(t, stdout.String(), "8663454897@messaging.sprintpcs.com (hello)")
}

// Without a storage directory the success line has no record ID.
func TestRun_HistoryDisabled(t *testing.T) {
	t.Setenv("MAILTOSMS_USERNAME", "")
	t.Setenv("MAILTOSMS_PASSWORD", "")

	missing := filepath.Join(t.TempDir(), "config.yaml")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", missing, "--dry-run", "8663454897", "att", "hi"}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), " -> sent to 8663454897@txt.att.net\n")
	assert.NotContains(t, stdout.String(), "missing from the send history")
}

func TestParseFlags_Overrides(t *testing.T) {
	var stderr bytes.Buffer
	c, err := parseFlags([]string{
		"-u", "me@example.com",
		"--region", " gb ",
		"--subject", "",
		"8663454897", "att", "hi",
	}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "8663454897", c.number)
	assert.Equal(t, "att", c.carrier)
	assert.Equal(t, "hi", c.message)
	assert.True(t, c.changed["subject"])
	assert.False(t, c.changed["mms"])
	assert.Equal(t, " gb ", c.region)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOk, exitCode(nil))
	assert.Equal(t, ExitFlags, exitCode(Fatalf(ExitFlags, "bad flag")))
	assert.Equal(t, ExitFailure, exitCode(fmt.Errorf("something else")))
}
