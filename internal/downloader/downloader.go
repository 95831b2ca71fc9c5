package downloader

import (
	"context"
	"errors"
	"io"
	"time"

	"szepaper/pkg/epaper"
	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
)

// SessionAuthenticator logs into the portal
type SessionAuthenticator interface {
	Login(ctx context.Context, creds epaper.Credentials) (*epaper.LoginResult, error)
}

// IssueFetcher downloads one issue over a session
type IssueFetcher interface {
	Fetch(ctx context.Context, req epaper.IssueRequest) (*epaper.Issue, error)
}

// FetcherFactory builds a fetcher bound to a logged-in session
type FetcherFactory func(session *epaper.Session) IssueFetcher

// IssueStorage persists issues and maintains the alias link
type IssueStorage interface {
	SaveIssue(r io.Reader, filename string) (string, int64, error)
	UpdateAlias(filename string) error
}

// Request describes one download run
type Request struct {
	Credentials epaper.Credentials
	Edition     string
	Date        time.Time
}

// Result describes a completed run
type Result struct {
	Filename     string
	Path         string
	Bytes        int64
	AliasUpdated bool
	Credentials  epaper.CredentialStatus
	Duration     time.Duration
}

// Downloader runs login, fetch and save for a single issue
type Downloader struct {
	auth       SessionAuthenticator
	newFetcher FetcherFactory
	storage    IssueStorage
	logger     logger.Logger
	now        func() time.Time
	progress   func(r io.Reader, size int64) io.Reader
}

// Option configures a Downloader
type Option func(*Downloader)

// WithClock replaces time.Now when deciding whether an issue is current
func WithClock(now func() time.Time) Option {
	return func(d *Downloader) { d.now = now }
}

// WithProgress wraps the issue stream before it is saved, e.g. to draw a progress bar.
// size is -1 when the portal did not declare a length.
func WithProgress(wrap func(r io.Reader, size int64) io.Reader) Option {
	return func(d *Downloader) { d.progress = wrap }
}

// New creates a Downloader
func New(
	auth SessionAuthenticator,
	newFetcher FetcherFactory,
	storage IssueStorage,
	log logger.Logger,
	opts ...Option,
) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}

	d := &Downloader{
		auth:       auth,
		newFetcher: newFetcher,
		storage:    storage,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run downloads the requested issue into storage.
//
// The edition and date are checked before anything goes over the network. The
// alias is moved only for an issue dated today or later, so fetching an old
// issue leaves it pointing where it was.
func (d *Downloader) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	issueReq := epaper.IssueRequest{Edition: req.Edition, Date: req.Date}

	edition, filename, err := issueReq.Resolve()
	if err != nil {
		return nil, err
	}

	log := d.logger.WithFields(map[string]interface{}{
		"edition": edition.String(),
		"issue":   filename,
	})

	login, err := d.auth.Login(ctx, req.Credentials)
	if err != nil {
		return nil, err
	}
	if login.Credentials == epaper.CredentialsRejected {
		return nil, errs.New(errs.ErrorTypeUsage, "the portal rejected the credentials for %s", req.Credentials.Username)
	}

	issue, err := d.newFetcher(login.Session).Fetch(ctx, issueReq)
	if err != nil {
		if errors.Is(err, errs.ErrIssueUnavailable) && login.Credentials == epaper.CredentialsUnverified {
			log.Warn("Issue unavailable; wrong credentials look the same to the portal")
		}
		return nil, err
	}
	defer issue.Close()

	var src io.Reader = issue
	if d.progress != nil {
		src = d.progress(issue, issue.Size)
	}

	path, n, err := d.storage.SaveIssue(src, issue.Filename)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Saving issue failed")
		return nil, err
	}

	result := &Result{
		Filename:    issue.Filename,
		Path:        path,
		Bytes:       n,
		Credentials: login.Credentials,
	}

	if epaper.IsCurrentOrFuture(req.Date, d.now()) {
		if err := d.storage.UpdateAlias(issue.Filename); err != nil {
			return nil, err
		}
		result.AliasUpdated = true
	}

	result.Duration = time.Since(start)
	logger.LogIssueSaved(log, result.Path, result.Bytes, result.AliasUpdated)

	return result, nil
}

// EpaperFetchers is the FetcherFactory for the real portal
func EpaperFetchers(opts ...epaper.FetcherOption) FetcherFactory {
	return func(session *epaper.Session) IssueFetcher {
		return epaper.NewFetcher(session, opts...)
	}
}
