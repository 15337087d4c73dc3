package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL checks if the search path looks like a Git repository URL.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") || strings.HasPrefix(input, "git@")
}

// repoName derives a directory name from a Git URL, e.g. "project" from
// "git@github.com:user/project.git".
func repoName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = path.Clean(name)
	if name == "" || name == "." || name == "/" {
		return "repo"
	}
	return name
}

// cloneGitRepo shallow-clones url into a fresh temporary directory. The
// returned directory holds the working tree; cleanup removes everything.
func cloneGitRepo(url string, progress io.Writer) (dir string, cleanup func(), err error) {
	tempDir, err := os.MkdirTemp("", appName+"-git-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(tempDir) }

	dir = filepath.Join(tempDir, repoName(url))
	_, err = git.PlainClone(dir, false, &git.CloneOptions{
		URL:           url,
		Progress:      progress,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return dir, cleanup, nil
}
