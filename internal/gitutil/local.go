// Package gitutil reads pull request style changes from local Git repositories.
package gitutil

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	gogithub "github.com/google/go-github/v73/github"
	"github.com/google/uuid"

	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/github"
)

// LocalOwner is the owner reported for repositories read from disk.
const LocalOwner = "local"

// LocalSource serves the diff between two commits of a local repository through the
// github.Client interface, so the review job can run without GitHub. Comments are kept
// in memory.
type LocalSource struct {
	repo   *git.Repository
	name   string
	base   *object.Commit
	head   *object.Commit
	logger *slog.Logger

	mu       sync.Mutex
	comments []string
}

var _ github.Client = (*LocalSource)(nil)

// OpenLocalSource opens the repository at path and resolves the two revisions to compare.
func OpenLocalSource(path, baseRev, headRev string, logger *slog.Logger) (*LocalSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	base, err := resolveCommit(repo, baseRev)
	if err != nil {
		return nil, err
	}
	head, err := resolveCommit(repo, headRev)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(filepath.Clean(path))
	if abs, err := filepath.Abs(path); err == nil {
		name = filepath.Base(abs)
	}

	return &LocalSource{
		repo:   repo,
		name:   name,
		base:   base,
		head:   head,
		logger: logger,
	}, nil
}

func resolveCommit(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object for %s: %w", hash, err)
	}
	return commit, nil
}

// BaseSHA returns the resolved base commit.
func (s *LocalSource) BaseSHA() string { return s.base.Hash.String() }

// HeadSHA returns the resolved head commit.
func (s *LocalSource) HeadSHA() string { return s.head.Hash.String() }

// Event returns a review event describing the local change as a pull request.
func (s *LocalSource) Event() *core.ReviewEvent {
	return &core.ReviewEvent{
		DeliveryID:   uuid.NewString(),
		Action:       core.ActionSynchronize,
		RepoOwner:    LocalOwner,
		RepoName:     s.name,
		RepoFullName: LocalOwner + "/" + s.name,
		PRNumber:     1,
		PRTitle:      firstLine(s.head.Message),
		HeadSHA:      s.HeadSHA(),
		Sender:       s.head.Author.Name,
	}
}

// GetPullRequest is not available for a local repository.
func (s *LocalSource) GetPullRequest(context.Context, string, string, int) (*gogithub.PullRequest, error) {
	return nil, fmt.Errorf("pull request metadata for a local repository: %w", errors.ErrUnsupported)
}

// ListChangedFiles returns the files that differ between the base and head commits, sorted by path.
func (s *LocalSource) ListChangedFiles(ctx context.Context, _, _ string, _ int) ([]github.ChangedFile, error) {
	baseTree, err := s.base.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for base commit %s: %w", s.base.Hash, err)
	}
	headTree, err := s.head.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for head commit %s: %w", s.head.Hash, err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees between %s and %s: %w", s.base.Hash, s.head.Hash, err)
	}

	files := make([]github.ChangedFile, 0, len(changes))
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			s.logger.Error("failed to get action for change, skipping", "error", err)
			continue
		}

		switch action {
		case merkletrie.Insert:
			files = append(files, github.ChangedFile{Path: change.To.Name, Status: github.FileStatusAdded})
		case merkletrie.Modify:
			status := github.FileStatusModified
			if change.From.Name != change.To.Name {
				status = github.FileStatusRenamed
			}
			files = append(files, github.ChangedFile{Path: change.To.Name, Status: status})
		case merkletrie.Delete:
			files = append(files, github.ChangedFile{Path: change.From.Name, Status: github.FileStatusRemoved})
		}
	}

	slices.SortFunc(files, func(a, b github.ChangedFile) int { return cmp.Compare(a.Path, b.Path) })
	return files, nil
}

// GetFileContent returns the content of path at ref, which may be any revision go-git resolves.
func (s *LocalSource) GetFileContent(_ context.Context, _, _, ref, path string) (string, error) {
	commit := s.head
	if ref != "" && ref != s.HeadSHA() {
		var err error
		if commit, err = resolveCommit(s.repo, ref); err != nil {
			return "", err
		}
	}

	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %s at %s", github.ErrFileNotFound, path, commit.Hash)
		}
		return "", fmt.Errorf("failed to read %s at %s: %w", path, commit.Hash, err)
	}

	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("failed to read contents of %s: %w", path, err)
	}
	return content, nil
}

// CreateComment keeps the comment body for Comments.
func (s *LocalSource) CreateComment(_ context.Context, _, _ string, _ int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, body)
	s.logger.Debug("stored local review comment", "length", len(body))
	return nil
}

// Comments returns the bodies passed to CreateComment, oldest first.
func (s *LocalSource) Comments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.comments)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
