// Package page loads pull request pages and carries extraction requests to
// them.
//
// A page is addressed by a target: an http(s) URL fetched over the network,
// or the path of a saved HTML file. [Loader] turns a target into a parsed
// [dom.Document]. [Broker] plays the role of the messaging channel between the
// presenter and the per-tab extractor: requests to a tab only reach an
// extractor after the tab has been attached.
package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Iron-Ham/prtasks/internal/dom"
	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

const (
	// DefaultUserAgent identifies prtasks to the page host.
	DefaultUserAgent = "prtasks/1.0 (+https://github.com/Iron-Ham/prtasks)"

	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond limits fetches to the page host.
	DefaultRequestsPerSecond = 1.0

	defaultBurst = 2

	// maxPageBytes caps how much of a response body is parsed.
	maxPageBytes = 16 << 20
)

// Loader turns a target into a parsed document.
type Loader interface {
	Load(ctx context.Context, target string) (dom.Document, error)
}

// Options configures the loaders built by NewLoader.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64

	// URLOverride is the page location assumed for saved files. When empty
	// the file's canonical link is used.
	URLOverride string

	// HTTPClient replaces the default client. Its Timeout is left alone.
	HTTPClient *http.Client

	// Hosts limits which hosts are fetched. Nil allows every host.
	Hosts *Qualifier

	Logger *logging.Logger
}

// IsRemote reports whether target is fetched over the network.
func IsRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// NewLoader returns a Loader that fetches remote targets and reads everything
// else from disk.
func NewLoader(opts Options) Loader {
	return &router{
		remote: NewFetcher(opts),
		local:  NewFileLoader(opts.URLOverride, opts.Logger),
	}
}

type router struct {
	remote Loader
	local  Loader
}

func (r *router) Load(ctx context.Context, target string) (dom.Document, error) {
	if IsRemote(target) {
		return r.remote.Load(ctx, target)
	}
	return r.local.Load(ctx, target)
}

// Fetcher loads pages over HTTP. Requests share one rate limiter, so
// refreshes and watch polls cannot hammer the host.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	timeout   time.Duration
	hosts     *Qualifier
	logger    *logging.Logger
}

// NewFetcher creates a Fetcher. Zero option values take the package defaults.
func NewFetcher(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if client.Timeout > 0 {
		timeout = client.Timeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(rps), defaultBurst),
		userAgent: userAgent,
		timeout:   timeout,
		hosts:     opts.Hosts,
		logger:    logger,
	}
}

// Load fetches target and parses the body. The document URL is the final
// URL after redirects.
func (f *Fetcher) Load(ctx context.Context, target string) (dom.Document, error) {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return nil, errors.NewValidationError("invalid page URL").WithField("url").WithValue(target).WithCause(err)
	}
	if f.hosts != nil && !f.hosts.AllowsHost(u.Hostname()) {
		return nil, errors.NewPageError("host is not listed in page.hosts", errors.ErrHostNotAllowed).WithURL(target)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, errors.NewPageError("rate limiter wait aborted", errors.Join(errors.ErrCanceled, err)).WithURL(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.NewValidationError("invalid page URL").WithField("url").WithValue(target).WithCause(err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.NewTimeoutError("fetching "+target, f.timeout).WithCause(err)
		}
		return nil, errors.NewPageError(fmt.Sprintf("request failed: %v", err), errors.ErrFetchFailed).
			WithURL(target).
			WithRetryable(true)
	}
	defer func() { _ = resp.Body.Close() }()

	f.logger.Debug("page fetched",
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewPageError(fmt.Sprintf("unexpected status %q", resp.Status), errors.ErrFetchFailed).
			WithURL(target).
			WithStatus(resp.StatusCode)
	}

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
		if f.hosts != nil && !f.hosts.AllowsHost(resp.Request.URL.Hostname()) {
			return nil, errors.NewPageError("redirected to a host not listed in page.hosts", errors.ErrHostNotAllowed).WithURL(final)
		}
	}

	doc, err := dom.Parse(io.LimitReader(resp.Body, maxPageBytes), final)
	if err != nil {
		return nil, errors.NewPageError("failed to parse page", err).WithURL(final)
	}
	return doc, nil
}

// isTimeout reports whether err is a client or dial timeout rather than
// the caller canceling.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FileLoader reads saved pages from disk.
type FileLoader struct {
	location string
	logger   *logging.Logger
}

// NewFileLoader creates a FileLoader. location is the page URL assumed for
// every file; when empty each file's canonical link is used instead.
func NewFileLoader(location string, logger *logging.Logger) *FileLoader {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &FileLoader{location: location, logger: logger}
}

// Load reads and parses the file at path. A page without a known location
// still loads; it just never qualifies as a pull request page.
func (l *FileLoader) Load(ctx context.Context, path string) (dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewPageError("load canceled", err).WithURL(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPageError(fmt.Sprintf("failed to read page: %v", err), errors.ErrFetchFailed).WithURL(path)
	}

	doc, err := dom.Parse(bytes.NewReader(data), l.location)
	if err != nil {
		return nil, errors.NewPageError("failed to parse page", err).WithURL(path)
	}
	if l.location != "" {
		return doc, nil
	}

	canonical, ok := dom.CanonicalURL(doc)
	if !ok {
		l.logger.Debug("saved page has no canonical location", "path", path)
		return doc, nil
	}

	doc, err = dom.Parse(bytes.NewReader(data), canonical)
	if err != nil {
		return nil, errors.NewPageError("failed to parse page", err).WithURL(path)
	}
	return doc, nil
}
