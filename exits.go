package main

import (
	"errors"
	"fmt"
	"os"
)

// ExitCode is the process exit status
type ExitCode int

const (
	ExitOk      ExitCode = 0
	ExitFailure ExitCode = 1
	ExitFlags   ExitCode = 2
)

// ExitError pairs an error with the exit status it should produce
type ExitError struct {
	err  error
	exit ExitCode
}

func (e ExitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e ExitError) Unwrap() error {
	return e.err
}

// Fatalf returns an ExitError with a formatted message
func Fatalf(code ExitCode, msg string, args ...interface{}) error {
	return ExitError{
		err:  fmt.Errorf(msg, args...),
		exit: code,
	}
}

// exitCode maps err to an exit status. Errors that aren't ExitErrors are
// plain failures.
func exitCode(err error) ExitCode {
	if err == nil {
		return ExitOk
	}
	var ex ExitError
	if errors.As(err, &ex) {
		return ex.exit
	}
	return ExitFailure
}

func Exit(code ExitCode) {
	os.Exit(int(code))
}
