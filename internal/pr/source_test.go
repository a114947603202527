package pr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Iron-Ham/prtasks/internal/errors"
)

const testPR = "https://github.com/acme/widgets/pull/42"

type apiCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
	} `json:"commit"`
}

func commit(sha, message string) apiCommit {
	c := apiCommit{SHA: sha, HTMLURL: "https://github.com/acme/widgets/commit/" + sha}
	c.Commit.Message = message
	return c
}

// newAPIServer serves the commits of acme/widgets#42 in two pages.
func newAPIServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()

	var auth string
	pages := map[string][]apiCommit{
		"": {
			commit("a1", "ABC-1 add widget\n\nLonger body mentioning XYZ-2"),
			commit("a2", "abc-1 follow up"),
		},
		"2": {
			commit("a3", "Refactor internals"),
			commit("a4", "ABC-1 add widget"),
			commit("a5", "4521 hotfix"),
		},
	}

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/repos/acme/widgets/pulls/42/commits" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")

		page := r.URL.Query().Get("page")
		if page == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=2&per_page=100>; rel="next"`, srv.URL, r.URL.Path))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pages[page])
	}))
	t.Cleanup(srv.Close)
	return srv, &auth
}

func TestCommitSource_Tasks(t *testing.T) {
	srv, auth := newAPIServer(t)

	client, err := NewClient(context.Background(), "secret-token", srv.URL+"/api/v3/")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	res, err := NewCommitSource(client, nil).Tasks(context.Background(), Ref{"acme", "widgets", 42})
	if err != nil {
		t.Fatalf("Tasks() error = %v", err)
	}

	wantIDs := []string{"4521", "ABC-1"}
	if len(res.TaskIDs) != len(wantIDs) {
		t.Fatalf("TaskIDs = %v, want %v", res.TaskIDs, wantIDs)
	}
	for i, id := range wantIDs {
		if res.TaskIDs[i] != id {
			t.Errorf("TaskIDs[%d] = %q, want %q", i, res.TaskIDs[i], id)
		}
	}

	// The subject line repeated on page two is deduplicated.
	rec := res.TaskDetails["ABC-1"]
	if rec == nil || len(rec.Commits) != 2 {
		t.Fatalf("ABC-1 record = %+v, want two commits", rec)
	}
	if rec.Commits[0].Message != "ABC-1 add widget" {
		t.Errorf("message = %q, want subject line only", rec.Commits[0].Message)
	}
	if rec.Commits[0].URL != "https://github.com/acme/widgets/commit/a1" {
		t.Errorf("URL = %q", rec.Commits[0].URL)
	}

	if *auth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want bearer token", *auth)
	}
}

func TestCommitSource_NotFound(t *testing.T) {
	srv, _ := newAPIServer(t)

	client, err := NewClient(context.Background(), "", srv.URL+"/api/v3/")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	res, err := NewCommitSource(client, nil).Tasks(context.Background(), Ref{"acme", "gadgets", 1})
	if err == nil {
		t.Fatal("expected error")
	}

	var pageErr *errors.PageError
	if !errors.As(err, &pageErr) {
		t.Fatalf("error type = %T, want *PageError", err)
	}
	if pageErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", pageErr.Status)
	}
	if len(res.TaskIDs) != 0 {
		t.Errorf("TaskIDs = %v, want none", res.TaskIDs)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "://bad"); err == nil {
		t.Error("expected error for malformed base URL")
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ABC-1 fix\n\nbody", "ABC-1 fix"},
		{"ABC-1 fix\r\nbody", "ABC-1 fix"},
		{"single line", "single line"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Subject(tt.in); got != tt.want {
			t.Errorf("Subject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
