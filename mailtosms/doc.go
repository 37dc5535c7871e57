// Package mailtosms sends text messages by emailing a carrier's
// email-to-text gateway. A Client resolves the gateway address for a phone
// number, connects to a mail server, and sends messages to that address.
//
//	c, err := mailtosms.New("5551234567", "att", creds, resolve.Config{}, transport)
//	if err != nil {
//		// the number, carrier or mail server was no good
//	}
//	defer c.Close()
//	c.Send(html.Text("this is a message"))
package mailtosms
