package e2e

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/ptgott/mail-to-sms/userconfig"
)

// appConfigOptions is used to fill in a config template with details unique to
// a specific test environment. Keep this as small as possible so the input
// remains as close to a "real" YAML document as we can make it. Also using
// YAML/JSON-compatible types only here.
//
// Fields are exported so we can use them in templates.
type appConfigOptions struct {
	SMTPServerAddress string
	StorageDir        string
	GatewaysFile      string
	Region            string
	Subject           string
	PreferMMS         bool
}

const configTemplate = `---
email:
    smtpServerAddress: {{ .SMTPServerAddress }}
    username: myuser123@example.com
    password: myuser123
    skipCertVerification: true
resolution:
{{- if .Region }}
    region: {{ .Region }}
{{- end }}
{{- if .Subject }}
    subject: {{ .Subject }}
{{- end }}
{{- if .GatewaysFile }}
    gatewaysFile: {{ .GatewaysFile }}
{{- end }}
    mms: {{ .PreferMMS }}
    quiet: true
{{- if .StorageDir }}
storage:
    storageDir: {{ .StorageDir }}
    keyTTL: "8760h"
{{- end }}
`

// createUserConfig renders the config template with opts and returns the
// validated result, the same way the application reads its config file.
func createUserConfig(opts appConfigOptions) (userconfig.Meta, error) {
	tmpl, err := template.New("conf").Parse(configTemplate)

	// This means the config template string was written incorrectly. Not
	// an issue with the application itself.
	if err != nil {
		return userconfig.Meta{}, fmt.Errorf("couldn't parse the application config template: %v", err)
	}

	var config bytes.Buffer

	err = tmpl.Execute(&config, opts)

	// This is an issue with the test environment, not the application
	if err != nil {
		return userconfig.Meta{}, fmt.Errorf("couldn't populate the application config template: %v", err)
	}

	m, err := userconfig.Parse(&config)
	if err != nil {
		return userconfig.Meta{}, fmt.Errorf("couldn't parse the application config: %v", err)
	}

	return m.CheckAndSetDefaults()
}
