package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgHiGreen)
	infoColor = color.New(color.FgCyan)
	errColor  = color.New(color.FgHiRed)
)

// statusf prints a one-line progress message
func statusf(w io.Writer, msg string, args ...interface{}) {
	_, _ = infoColor.Fprintf(w, "==> %s\n", fmt.Sprintf(msg, args...))
}

// successf prints the final line for a message that went out
func successf(w io.Writer, msg string, args ...interface{}) {
	_, _ = okColor.Fprintf(w, " -> %s\n", fmt.Sprintf(msg, args...))
}

// failure prints err as the final line for a message that didn't go out
func failure(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = errColor.Fprintf(w, "*** %s\n", err.Error())
}
