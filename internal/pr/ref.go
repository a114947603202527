// Package pr reads pull request commits through the GitHub REST API and
// renders task summaries for pull request descriptions.
package pr

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Iron-Ham/prtasks/internal/errors"
)

var (
	// pullPathPattern captures owner, repository and number from a pull
	// request path. Trailing segments such as /commits are allowed.
	pullPathPattern = regexp.MustCompile(`^/([^/]+)/([^/]+)/pull/(\d+)(?:/|$)`)

	// shortRefPattern matches the owner/repo#123 shorthand.
	shortRefPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)#(\d+)$`)
)

// Ref identifies one pull request.
type Ref struct {
	Owner  string
	Repo   string
	Number int
}

// String returns the owner/repo#number form.
func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParseRef accepts a pull request URL or the owner/repo#number shorthand.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)

	if m := shortRefPattern.FindStringSubmatch(s); m != nil {
		return newRef(m[1], m[2], m[3])
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return Ref{}, errors.NewValidationError("not a pull request reference").WithField("ref").WithValue(s)
	}
	m := pullPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return Ref{}, errors.NewValidationError("not a pull request URL").WithField("ref").WithValue(s)
	}
	return newRef(m[1], m[2], m[3])
}

func newRef(owner, repo, number string) (Ref, error) {
	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return Ref{}, errors.NewValidationError("invalid pull request number").WithField("number").WithValue(number)
	}
	return Ref{Owner: owner, Repo: repo, Number: n}, nil
}
