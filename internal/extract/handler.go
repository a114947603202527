package extract

import (
	"net/url"
	"regexp"

	"github.com/Iron-Ham/prtasks/internal/dom"
	"github.com/Iron-Ham/prtasks/internal/errors"
)

// ActionGetTasks is the only request action the extractor answers.
const ActionGetTasks = "getTasks"

// prPathPattern matches a pull request location anywhere in a URL path.
var prPathPattern = regexp.MustCompile(`/pull/\d+`)

// Request asks the extractor for work.
type Request struct {
	// ID correlates the request with log entries. Optional.
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
}

// Response is the extractor's answer: Data on success, Error otherwise.
type Response struct {
	Success bool    `json:"success"`
	Data    *Result `json:"data,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// IsPRPath reports whether a URL path points at a pull request.
func IsPRPath(path string) bool {
	return prPathPattern.MatchString(path)
}

// IsPRLocation reports whether u is a pull request page.
func IsPRLocation(u *url.URL) bool {
	return u != nil && IsPRPath(u.Path)
}

// Failure builds an unsuccessful Response.
func Failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// Handle answers one request against doc. handled is false for actions the
// extractor does not know, in which case no response should be delivered.
//
// Handle never panics: scan failures become a generic failure response.
func (e *Extractor) Handle(doc dom.Document, req Request) (resp Response, handled bool) {
	if req.Action != ActionGetTasks {
		return Response{}, false
	}

	logger := e.logger
	if req.ID != "" {
		logger = logger.WithRequest(req.ID)
	}

	var loc *url.URL
	if doc != nil {
		loc = doc.URL()
	}
	if !IsPRLocation(loc) {
		logger.Info("request rejected", "reason", errors.ErrNotPRPage.Error())
		return Failure(errors.ErrNotPRPage), true
	}

	res, err := (&Extractor{logger: logger}).TryExtract(doc)
	if err != nil {
		logger.Error("extraction failed", "error", err.Error())
		return Failure(errors.ErrExtractionFailed), true
	}
	return Response{Success: true, Data: &res}, true
}
