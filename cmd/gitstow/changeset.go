package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// buildChangeSet merges --dir and --file inputs into one change set. Explicit
// --file entries win over files picked up from the directory walk.
func buildChangeSet(specs []string, dir string) (map[string][]byte, error) {
	files := map[string][]byte{}

	if dir != "" {
		fromDir, err := changeSetFromDir(dir)
		if err != nil {
			return nil, err
		}
		for p, data := range fromDir {
			files[p] = data
		}
	}

	for _, spec := range specs {
		repoPath, localPath, err := parseFileSpec(spec)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", localPath, err)
		}
		files[repoPath] = data
	}

	return files, nil
}

// parseFileSpec splits "repopath=localpath". A bare path stands for itself.
func parseFileSpec(spec string) (string, string, error) {
	if spec == "" {
		return "", "", fmt.Errorf("empty --file spec")
	}

	repoPath, localPath, found := strings.Cut(spec, "=")
	if !found {
		return spec, spec, nil
	}
	if repoPath == "" || localPath == "" {
		return "", "", fmt.Errorf("malformed --file spec %q", spec)
	}
	return repoPath, localPath, nil
}

// changeSetFromDir snapshots every regular file under root, keyed by its
// slash-separated relative path. Dot directories are skipped.
func changeSetFromDir(root string) (map[string][]byte, error) {
	files := map[string][]byte{}

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			base := filepath.Base(p)
			if strings.HasPrefix(base, ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}
