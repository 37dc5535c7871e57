package html

import (
	"html/template"
	"strings"
)

// Contents is what a user wants to say in a message. Callers can provide
// plain text, a sequence of lines, an HTML payload, or a mix. Build one
// with Text, Lines or HTML, or fill in the fields directly.
type Contents struct {
	// Each element is one line of the text/plain body
	Lines []string
	// Optional HTML to send as-is instead of rendering Lines
	HTML string
}

// Text returns Contents for a single plain text string. The string can
// contain newlines.
func Text(s string) Contents {
	return Contents{Lines: []string{s}}
}

// Lines returns Contents with one line per argument.
func Lines(l ...string) Contents {
	return Contents{Lines: l}
}

// HTML returns Contents with an HTML payload. The text/plain body is
// derived from the payload with the tags left in, which gateways that only
// accept plain text tend to tolerate better than an empty body.
func HTML(h string) Contents {
	return Contents{HTML: h}
}

// IsEmpty reports whether there is anything to send.
func (c Contents) IsEmpty() bool {
	return strings.TrimSpace(c.GenerateText()) == ""
}

// Template meant to be populated with Contents.Lines
const emailBodyHTML = `<html>
<head>
</head>
<body>
{{- range . }}
	<p>{{ . }}</p>
{{- end }}
</body>
</html>`

// GenerateText produces an email body that satisfies the text/plain MIME
// type. Most carriers forward only this part to the phone.
func (c Contents) GenerateText() string {
	if len(c.Lines) == 0 {
		return c.HTML
	}
	return strings.Join(c.Lines, "\n")
}

// GenerateBody produces the text/html alternative for the email. An explicit
// HTML payload wins over rendering the lines.
func (c Contents) GenerateBody() (string, error) {
	if c.HTML != "" {
		return c.HTML, nil
	}

	var str strings.Builder
	// The template text is constant, so Must only panics on a programming
	// error
	tmpl := template.Must(template.New("body").Parse(emailBodyHTML))
	if err := tmpl.Execute(&str, c.Lines); err != nil {
		return "", err
	}

	return str.String(), nil
}
