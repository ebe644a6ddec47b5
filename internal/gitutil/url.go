package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	prURLRegex       = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)
	prShorthandRegex = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
	repoNameRegex    = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)$`)
)

// PullRequestRef identifies a pull request on GitHub.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// FullName returns "owner/repo".
func (r PullRequestRef) FullName() string { return r.Owner + "/" + r.Repo }

func (r PullRequestRef) String() string { return fmt.Sprintf("%s#%d", r.FullName(), r.Number) }

// ParsePullRequest accepts https://github.com/{owner}/{repo}/pull/{number}, the same
// without scheme, or the owner/repo#number shorthand.
func ParsePullRequest(s string) (PullRequestRef, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")

	matches := prURLRegex.FindStringSubmatch(s)
	if matches == nil {
		matches = prShorthandRegex.FindStringSubmatch(s)
	}
	if len(matches) != 4 {
		return PullRequestRef{}, fmt.Errorf("invalid pull request reference: %s", s)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return PullRequestRef{}, fmt.Errorf("invalid PR number '%s'", matches[3])
	}
	return PullRequestRef{Owner: matches[1], Repo: matches[2], Number: number}, nil
}

// ParsePullRequestURL is ParsePullRequest returning the parts separately.
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	ref, err := ParsePullRequest(url)
	if err != nil {
		return "", "", 0, err
	}
	return ref.Owner, ref.Repo, ref.Number, nil
}

// ParseRepoFullName splits "owner/repo".
func ParseRepoFullName(s string) (owner, repo string, err error) {
	matches := repoNameRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return "", "", fmt.Errorf("invalid repository name %q, expected owner/repo", s)
	}
	return matches[1], matches[2], nil
}
