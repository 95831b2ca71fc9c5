package epaper

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
)

// DefaultTimeout bounds the login request and the wait for download response headers
const DefaultTimeout = 60 * time.Second

// Credentials is a subscriber username/password pair. It is only used to build
// the login form and is not kept by the session.
type Credentials struct {
	Username string
	Password string
}

// CredentialStatus says what is known about the credentials after login
type CredentialStatus int

const (
	// CredentialsUnverified means the login request completed but the portal gave
	// no signal about the credentials. This is the normal outcome.
	CredentialsUnverified CredentialStatus = iota
	CredentialsAccepted
	CredentialsRejected
)

func (s CredentialStatus) String() string {
	switch s {
	case CredentialsAccepted:
		return "accepted"
	case CredentialsRejected:
		return "rejected"
	default:
		return "unverified"
	}
}

// Session is an authenticated portal context: the cookie jar filled by the
// login request and a client that sends those cookies on downloads.
type Session struct {
	jar    http.CookieJar
	client *http.Client
}

// Client returns the HTTP client that carries the session cookies.
// It verifies TLS certificates.
func (s *Session) Client() *http.Client {
	return s.client
}

// Cookies returns the session cookies that would be sent to u
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	return s.jar.Cookies(u)
}

// Probe checks, with an authenticated request of its own, whether the portal
// accepted the credentials
type Probe func(ctx context.Context, s *Session) (CredentialStatus, error)

// LoginResult is the outcome of a login request
type LoginResult struct {
	Session     *Session
	StatusCode  int
	Credentials CredentialStatus
}

// Verify runs probe against the session and records the answer
func (r *LoginResult) Verify(ctx context.Context, probe Probe) error {
	status, err := probe(ctx, r.Session)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, err, "credential probe failed")
	}
	r.Credentials = status
	return nil
}

// Authenticator logs into the portal and hands out sessions
type Authenticator struct {
	loginURL          string
	loginTransport    http.RoundTripper
	downloadTransport http.RoundTripper
	timeout           time.Duration
	probe             Probe
	logger            logger.Logger
}

// AuthOption configures an Authenticator
type AuthOption func(*Authenticator)

// WithLoginURL overrides the login endpoint
func WithLoginURL(u string) AuthOption {
	return func(a *Authenticator) { a.loginURL = u }
}

// WithTransports replaces the login and download round trippers
func WithTransports(login, download http.RoundTripper) AuthOption {
	return func(a *Authenticator) {
		a.loginTransport = login
		a.downloadTransport = download
	}
}

// WithTimeout sets the login timeout and the download response header timeout
func WithTimeout(d time.Duration) AuthOption {
	return func(a *Authenticator) { a.timeout = d }
}

// WithProbe makes Login verify the credentials right after the login request
func WithProbe(p Probe) AuthOption {
	return func(a *Authenticator) { a.probe = p }
}

// WithLogger sets the logger used by the authenticator
func WithLogger(l logger.Logger) AuthOption {
	return func(a *Authenticator) { a.logger = l }
}

// NewAuthenticator creates an Authenticator for the portal
func NewAuthenticator(opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		loginURL: LoginURL,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.GetLogger()
	}
	if a.loginTransport == nil {
		a.loginTransport = insecureLoginTransport()
	}
	if a.downloadTransport == nil {
		a.downloadTransport = downloadTransport(a.timeout)
	}
	return a
}

// insecureLoginTransport skips certificate verification. The portal's login
// host does not present a verifiable chain; only the login POST goes through here.
func insecureLoginTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return t
}

// downloadTransport verifies certificates and bounds the wait for headers.
// The body itself may take as long as it needs.
func downloadTransport(headerTimeout time.Duration) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ResponseHeaderTimeout = headerTimeout
	return t
}

// Login posts the credentials to the portal and returns the resulting session.
//
// The portal answers the same way whether or not it accepted the credentials,
// so neither the status code nor the body is checked. Unless a probe was
// configured the result reports CredentialsUnverified; a bad password shows up
// later as an unavailable issue. Only transport failures are errors.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	log := a.logger.WithField("user", creds.Username)
	log.Info("Logging into e-paper portal")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeTransport, err, "failed to create cookie jar")
	}

	loginClient := &http.Client{
		Transport: a.loginTransport,
		Jar:       jar,
		Timeout:   a.timeout,
	}

	form := GetLoginForm(creds)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeTransport, err, "failed to create login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := loginClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Login request failed")
		return nil, errs.Wrap(errs.ErrorTypeTransport, err, "login request failed")
	}
	// Drain so the connection can be reused; the body carries no signal
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	logger.LogRequest(log, http.MethodPost, a.loginURL, resp.StatusCode, time.Since(start))

	result := &LoginResult{
		Session: &Session{
			jar: jar,
			client: &http.Client{
				Transport: a.downloadTransport,
				Jar:       jar,
			},
		},
		StatusCode:  resp.StatusCode,
		Credentials: CredentialsUnverified,
	}

	if a.probe != nil {
		if err := result.Verify(ctx, a.probe); err != nil {
			return nil, err
		}
		log.WithField("credentials", result.Credentials.String()).Info("Credentials probed")
	}

	return result, nil
}
