// Package epaper talks to the Süddeutsche Zeitung e-paper portal.
//
// An Authenticator posts the subscriber login form and returns a Session whose
// cookie jar is shared with the download client. A Fetcher uses that session
// to request one issue, identified by an Edition from the fixed catalog and a
// calendar date, and hands back the PDF as a read-once Issue stream.
//
// Certificate verification is switched off for the login request only. The
// download client always verifies.
package epaper
