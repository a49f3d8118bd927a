// Package gitmirror records each sync of the mirror as a git commit.
package gitmirror

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a git repository rooted at the mirror's output directory.
type Repo struct {
	dir   string
	name  string
	email string
	repo  *gogit.Repository
}

// Commit is one entry of the history.
type Commit struct {
	Hash    string
	Message string
	Author  string
	When    time.Time
}

// Open opens the repository in dir, initializing it when needed.
func Open(_ context.Context, dir, name, email string) (*Repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create repo directory: %w", err)
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		// Not a repo yet.
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = name
		cfg.User.Email = email
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &Repo{dir: dir, name: name, email: email, repo: repo}, nil
}

// CommitAll stages every change in the working tree, including deletions,
// and commits it. It returns an empty hash when there was nothing to commit.
func (r *Repo) CommitAll(_ context.Context, msg string) (string, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	for path, s := range status {
		switch s.Worktree {
		case gogit.Unmodified:
		case gogit.Deleted:
			if _, err := w.Remove(path); err != nil {
				return "", fmt.Errorf("failed to stage removal of %s: %w", path, err)
			}
		default:
			if _, err := w.Add(path); err != nil {
				return "", fmt.Errorf("failed to stage %s: %w", path, err)
			}
		}
	}
	if status, err = w.Status(); err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}
	sig := &object.Signature{Name: r.name, Email: r.email, When: time.Now()}
	h, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return h.String(), nil
}

// History returns up to n commits, newest first.
func (r *Repo) History(_ context.Context, n int) ([]Commit, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return nil, nil // no commits yet is not an error
	}
	defer iter.Close()

	var out []Commit
	for range n {
		c, err := iter.Next()
		if err != nil {
			break
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		out = append(out, Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
	}
	return out, nil
}
