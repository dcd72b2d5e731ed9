// Package filex holds filesystem helpers for staging directories.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned by SafeJoin for names that would resolve outside
// the root directory.
var ErrUnsafePath = errors.New("unsafe path")

// EnsureDir creates dirName (relative names resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SafeJoin joins root and a relative archive entry name, rejecting absolute
// names, parent-directory segments and anything else that would land outside
// root. Both "/" and "\" count as separators.
func SafeJoin(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafePath)
	}

	slashed := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: %q is absolute", ErrUnsafePath, name)
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q escapes root", ErrUnsafePath, name)
		}
	}

	joined := filepath.Join(root, filepath.FromSlash(slashed))
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	return joined, nil
}
