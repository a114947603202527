package pr

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// maxPerPage is the largest page size the commits endpoint accepts.
const maxPerPage = 100

// NewClient creates a GitHub client. An empty token makes unauthenticated
// requests; a non-empty baseURL points the client at a GitHub Enterprise
// server.
func NewClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	if baseURL == "" {
		return client, nil
	}

	client, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
	}
	return client, nil
}

// CommitSource extracts task IDs from a pull request's commit list instead of
// its rendered page. Each commit's subject line is fed through the same
// dedup and matching rules the page extractor uses.
type CommitSource struct {
	client  *github.Client
	perPage int
	logger  *logging.Logger
}

// NewCommitSource wraps client.
func NewCommitSource(client *github.Client, logger *logging.Logger) *CommitSource {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &CommitSource{client: client, perPage: maxPerPage, logger: logger}
}

// Tasks lists every commit of the pull request and aggregates task IDs.
func (s *CommitSource) Tasks(ctx context.Context, ref Ref) (extract.Result, error) {
	collector := extract.NewCollector()
	opts := &github.ListOptions{PerPage: s.perPage}

	pages := 0
	for {
		commits, resp, err := s.client.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return extract.EmptyResult(), apiError(ref, resp, err)
		}
		pages++

		for _, rc := range commits {
			collector.Add(Subject(rc.GetCommit().GetMessage()), rc.GetHTMLURL())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	res := collector.Result()
	s.logger.Info("pull request commits scanned",
		"pr", ref.String(),
		"pages", pages,
		"messages", collector.Seen(),
		"task_ids", len(res.TaskIDs),
	)
	return res, nil
}

// Subject returns the first line of a commit message, which is what the
// commit list on a pull request page shows.
func Subject(message string) string {
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		return message[:i]
	}
	return message
}

func apiError(ref Ref, resp *github.Response, err error) error {
	pageErr := errors.NewPageError(fmt.Sprintf("listing commits of %s failed: %v", ref, err), errors.ErrFetchFailed)
	if resp != nil && resp.Response != nil {
		pageErr = pageErr.WithStatus(resp.StatusCode)
		if resp.Request != nil && resp.Request.URL != nil {
			pageErr = pageErr.WithURL(resp.Request.URL.String())
		}
	}
	return pageErr
}
