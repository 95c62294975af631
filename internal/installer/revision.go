package installer

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// RevisionReader reports the checked out revision of a component directory.
type RevisionReader interface {
	Revision(dir string) (string, error)
}

// GitRevisions reads HEAD of on-disk git checkouts without shelling out to git.
type GitRevisions struct{}

// Revision returns the commit hash HEAD points to in dir.
func (GitRevisions) Revision(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD of %s: %w", dir, err)
	}
	return head.Hash().String(), nil
}
