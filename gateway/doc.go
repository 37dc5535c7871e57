package gateway

// gateway holds the reference table that maps carrier names to the email
// domains carriers use for their email-to-text gateways. It reads the table
// from a JSON or YAML document and knows nothing about phone numbers or how
// a message is sent.
