package html

// html is responsible for generating HTML and text bodies for inclusion in an
// email. It's not concerned with the lower-level logic involved in sending
// the email or with where the email is going.
