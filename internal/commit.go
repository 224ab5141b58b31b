package internal

import (
	"fmt"
	"strings"
	"time"
)

// Author identifies who a commit is recorded for.
type Author struct {
	Name  string
	Email string
}

func (a Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("author name is empty")
	}
	if strings.TrimSpace(a.Email) == "" {
		return fmt.Errorf("author email is empty")
	}
	return nil
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// CommitRecord is one entry of a repository's history. Files holds the paths
// the commit touched relative to its first parent, or every tracked path when
// the commit has no parent.
type CommitRecord struct {
	Hash    string
	Message string
	Author  Author
	Date    time.Time
	Files   []string
}

// BranchInfo describes the checked-out branch of a repository.
type BranchInfo struct {
	CurrentBranch string
	LastCommit    *CommitRecord
}
