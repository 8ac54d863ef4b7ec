package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitCommitKey parses a key produced by Commit.EntityKey.
func SplitCommitKey(key string) (repository, sha string, err error) {
	i := strings.LastIndex(key, ":")
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("malformed commit key %q", key)
	}
	return key[:i], key[i+1:], nil
}

// SplitPullRequestKey parses a key produced by PullRequest.EntityKey.
func SplitPullRequestKey(key string) (repository string, number int64, err error) {
	i := strings.LastIndex(key, "#")
	if i <= 0 {
		return "", 0, fmt.Errorf("malformed pull request key %q", key)
	}
	number, err = strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed pull request key %q: %w", key, err)
	}
	return key[:i], number, nil
}

// SplitCodeFileKey parses a key produced by CodeFile.EntityKey. Repository
// names never contain a colon, file paths occasionally do.
func SplitCodeFileKey(key string) (repository, path string, err error) {
	repository, path, ok := strings.Cut(key, ":")
	if !ok || repository == "" || path == "" {
		return "", "", fmt.Errorf("malformed code file key %q", key)
	}
	return repository, path, nil
}
