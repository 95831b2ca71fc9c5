package epaper

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
)

// IssueRequest names one issue: an edition key and a calendar date
type IssueRequest struct {
	Edition string
	Date    time.Time
}

// Resolve checks the request without touching the network and returns the
// edition and filename. Sundays are rejected before the edition is looked up.
func (r IssueRequest) Resolve() (Edition, string, error) {
	if !IsPublicationDay(r.Date) {
		return "", "", errs.New(errs.ErrorTypeUnavailableDate, "no issue on %s: the paper is not published on Sundays", r.Date.Format("2006-01-02"))
	}

	edition, err := LookupEdition(r.Edition)
	if err != nil {
		return "", "", err
	}

	filename, err := edition.Filename(r.Date)
	if err != nil {
		return "", "", err
	}
	return edition, filename, nil
}

// Fetcher downloads issues over an authenticated session
type Fetcher struct {
	client  *http.Client
	baseURL string
	logger  logger.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithDownloadBaseURL overrides the download endpoint
func WithDownloadBaseURL(u string) FetcherOption {
	return func(f *Fetcher) { f.baseURL = u }
}

// WithFetcherLogger sets the logger used by the fetcher
func WithFetcherLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher that downloads with the session's cookies
func NewFetcher(session *Session, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  session.Client(),
		baseURL: DownloadBaseURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.GetLogger()
	}
	return f
}

// Fetch requests one issue and returns it as an open stream.
//
// The portal answers 200 with an empty body when an issue is not available
// (not yet published or no longer kept), so an empty body is the only failure
// signal and is reported as an unavailable issue. The caller must Close the
// returned issue.
func (f *Fetcher) Fetch(ctx context.Context, req IssueRequest) (*Issue, error) {
	edition, filename, err := req.Resolve()
	if err != nil {
		return nil, err
	}

	log := f.logger.WithFields(map[string]interface{}{
		"edition": edition.String(),
		"issue":   filename,
	})

	downloadURL := GetDownloadURL(f.baseURL, filename)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeTransport, err, "failed to create download request")
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		log.WithError(err).Error("Download request failed")
		return nil, errs.Wrap(errs.ErrorTypeTransport, err, "download of %s failed", filename)
	}
	logged := *httpReq.URL
	logged.RawQuery = ""
	logger.LogRequest(log, http.MethodGet, logged.String(), resp.StatusCode, time.Since(start))
	log.Info("Downloading issue")

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, errs.New(errs.ErrorTypeTransport, "download of %s failed: server returned %s", filename, resp.Status)
	}

	if resp.ContentLength == 0 {
		resp.Body.Close()
		return nil, unavailable(filename)
	}

	var body io.Reader = resp.Body
	if resp.ContentLength < 0 {
		// No declared length: look at the first byte to tell empty from non-empty
		br := bufio.NewReader(resp.Body)
		if _, err := br.Peek(1); err != nil {
			resp.Body.Close()
			if errors.Is(err, io.EOF) {
				return nil, unavailable(filename)
			}
			return nil, errs.Wrap(errs.ErrorTypeTransport, err, "download of %s failed", filename)
		}
		body = br
	}

	log.DebugWithFields("Size of issue", map[string]interface{}{"bytes": resp.ContentLength})

	return NewIssue(filename, edition, req.Date, resp.ContentLength, body, resp.Body), nil
}

func unavailable(filename string) error {
	return errs.New(errs.ErrorTypeIssueUnavailable, "issue %s is not available for download (not yet published or too old)", filename)
}
