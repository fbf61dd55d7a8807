package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/schema"
)

// validationJSON adds the source document path to a ValidationResult.
type validationJSON struct {
	Path string `json:"path"`
	schema.ValidationResult
}

// WriteValidationResult outputs validator findings, dispatching based on the output format configured.
func WriteValidationResult(path string, result schema.ValidationResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, validationJSON{Path: path, ValidationResult: result})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"path", "severity", "message"}, func(cw *csv.Writer) error {
				return writeValidationRows(cw, path, result)
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("%w: validate", ErrUnsupportedOutput)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValidationText(w, path, result, cfg)
		}, "Wrote report")
	}
}

func writeValidationRows(w *csv.Writer, path string, result schema.ValidationResult) error {
	for _, msg := range result.Errors {
		if err := w.Write([]string{path, "error", msg}); err != nil {
			return err
		}
	}
	for _, msg := range result.Warnings {
		if err := w.Write([]string{path, "warning", msg}); err != nil {
			return err
		}
	}
	return nil
}

func writeValidationText(w io.Writer, path string, result schema.ValidationResult, cfg *contract.Config) error {
	status := heading(cfg, "✅", "valid")
	if !result.IsValid {
		status = heading(cfg, "❌", "invalid")
		if cfg.UseColors {
			status = contract.DeclineColor.Sprint(status)
		}
	} else if cfg.UseColors {
		status = contract.ApproveColor.Sprint(status)
	}
	fmt.Fprintf(w, "%s: %s\n", path, status)

	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", msg)
	}
	_, err := fmt.Fprintf(w, "%d errors, %d warnings\n", len(result.Errors), len(result.Warnings))
	return err
}
