package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/huangsam/scorecard/schema"
)

// Color variables for console output.
var (
	DeclineColor     = color.New(color.FgRed, color.Bold)     // DeclineColor represents a declined application.
	HardRuleColor    = color.New(color.FgMagenta, color.Bold) // HardRuleColor marks decisions forced by a rule.
	ReviewColor      = color.New(color.FgYellow)              // ReviewColor represents manual review.
	ApproveColor     = color.New(color.FgGreen)               // ApproveColor represents an approval.
	InformationColor = color.New(color.FgCyan)                // InformationColor is used for unknown outcomes.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(decision, hard schema.Decision) string {
	text := schema.GetPlainLabel(decision, hard)

	switch {
	case hard != schema.NoDecision:
		return HardRuleColor.Sprint(text)
	case decision == schema.Decline:
		return DeclineColor.Sprint(text)
	case decision == schema.Review:
		return ReviewColor.Sprint(text)
	case decision == schema.Approve:
		return ApproveColor.Sprint(text)
	default:
		return InformationColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given slash-separated path matches any of the
// exclude patterns. Patterns are doublestar globs ("**/drafts/**", "*.bak.yaml");
// a pattern without wildcards is treated as a directory prefix when it ends
// with '/' and as a substring otherwise.
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[{") {
			if ok, err := doublestar.Match(ex, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *.bak.yaml)
			if ok, err := doublestar.Match(ex, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".scorecard_runs.db"
	}
	return filepath.Join(homeDir, ".scorecard_runs.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
