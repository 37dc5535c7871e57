package resolve

// resolve turns a phone number and carrier name into the email address of
// the carrier's email-to-text gateway, e.g., 8663454897@txt.att.net. It
// doesn't send anything.
