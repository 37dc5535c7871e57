package e2e

import "regexp"

var subjectPattern = regexp.MustCompile(`(?m)^Subject: (.*?)\r?$`)

// extractSubject returns the Subject header of a raw email, or an empty
// string if there isn't one.
func extractSubject(body string) string {
	m := subjectPattern.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}
