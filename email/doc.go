package email

// email is responsible for sending email to an SMTP relay, including
// connecting to the server, negotiating TLS and authentication, and building
// a MIME-formatted email body. It doesn't know that the recipient is a
// carrier gateway, and sends whatever contents it is given.
