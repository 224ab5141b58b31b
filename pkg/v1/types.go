package v1

import "time"

// Author identifies who records a commit.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Commit describes one entry in a repository's history.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  Author    `json:"author"`
	Date    time.Time `json:"date"`
	Files   []string  `json:"files,omitempty"`
}

// BranchInfo reports the checked-out branch and its head commit. LastCommit
// is nil for a repository that has no commits yet.
type BranchInfo struct {
	CurrentBranch string  `json:"current_branch"`
	LastCommit    *Commit `json:"last_commit,omitempty"`
}

// S3Config carries connection settings for an S3-compatible endpoint. Leave
// AccessKeyID empty to use the SDK's default credential chain.
type S3Config struct {
	Region          string `json:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	UsePathStyle    bool   `json:"use_path_style,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"-"`
}
