package phone

// phone decides whether a user-provided phone number can receive text
// messages. Parsing and numbering plan rules come from
// github.com/nyaruka/phonenumbers; this package only adapts them to the
// inputs we get from users.
