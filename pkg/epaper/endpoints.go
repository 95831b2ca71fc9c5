package epaper

import (
	"net/url"
	"strings"
)

const (
	// LoginURL is the portal servlet that accepts the subscriber login form
	LoginURL = "https://epaper.sueddeutsche.de/digiPaper/servlet/attributeloginservlet"

	// DownloadBaseURL is the PDF download manager; the issue filename is appended to it
	DownloadBaseURL = "http://www.sueddeutsche.de/app/epaper/pdfversion/dwlmanager.php/"

	// FieldUsername and FieldPassword are the login form field names the portal expects
	FieldUsername = "sdeusername"
	FieldPassword = "sdepasswort"
)

// GetLoginForm builds the form body posted to LoginURL
func GetLoginForm(creds Credentials) url.Values {
	form := url.Values{}
	form.Set(FieldUsername, creds.Username)
	form.Set(FieldPassword, creds.Password)
	return form
}

// GetDownloadURL constructs the download URL for an issue filename.
// The filename goes into the path and again into the file query parameter.
func GetDownloadURL(baseURL, filename string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	params := url.Values{}
	params.Set("file", filename)

	return baseURL + url.PathEscape(filename) + "?" + params.Encode()
}
