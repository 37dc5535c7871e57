package e2e

// e2e contains integration tests that run the whole path from a YAML config
// to a message arriving at an SMTP server: config parsing, gateway
// resolution, the SMTP transport and the send history. The SMTP server runs
// in process. (These were intended to be end-to-end tests but became
// integration tests instead, hence the name.)
