package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/scorecard/internal/contract"
)

// DocumentPatterns are the globs that find scorecard documents under a root.
var DocumentPatterns = []string{"**/*.yaml", "**/*.yml", "**/*.json"}

// Discover finds scorecard documents under root, skipping excluded paths.
// The result holds absolute paths in lexical order.
func Discover(root string, excludes []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{absRoot}, nil
	}

	fsys := os.DirFS(absRoot)
	var files []string
	for _, pattern := range DocumentPatterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}
		for _, match := range matches {
			if contract.ShouldIgnore(match, excludes) {
				continue
			}
			files = append(files, filepath.Join(absRoot, filepath.FromSlash(match)))
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
