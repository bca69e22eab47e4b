package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

// open finds the repository containing path, walking up to the nearest .git
// so a rules subdirectory still resolves.
func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *GitInfoAdapter) IsGitRepo(path string) bool {
	_, err := open(path)
	return err == nil
}

// CommitHash returns the full hash of HEAD for the repository containing path.
func (g *GitInfoAdapter) CommitHash(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
