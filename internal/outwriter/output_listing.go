package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteScorecardListings outputs discovered scorecards, dispatching based on the output format configured.
func WriteScorecardListings(listings []schema.ScorecardListing, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, listings)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"path", "name", "version", "categories", "variables", "rules", "score_scale", "valid", "problem"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, l := range listings {
					rec := []string{
						l.Path, l.Name, l.Version,
						strconv.Itoa(l.Categories), strconv.Itoa(l.Variables), strconv.Itoa(l.Rules),
						strconv.FormatFloat(l.ScoreScale, 'f', -1, 64),
						strconv.FormatBool(l.Valid), l.Problem,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("%w: list", ErrUnsupportedOutput)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeListingTable(w, listings, cfg)
		}, "Wrote table")
	}
}

func writeListingTable(w io.Writer, listings []schema.ScorecardListing, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Name", "Version", "Categories", "Variables", "Rules", "Scale", "Status"})

	pathWidth := max(GetMaxReasonWidth(cfg)/2, 15)
	var data [][]string
	valid := 0
	for _, l := range listings {
		status := "ok"
		if !l.Valid {
			status = contract.TruncateText(l.Problem, pathWidth)
			if cfg.UseColors {
				status = contract.DeclineColor.Sprint(status)
			}
		} else {
			valid++
		}
		data = append(data, []string{
			contract.TruncateText(l.Path, pathWidth),
			l.Name,
			l.Version,
			strconv.Itoa(l.Categories),
			strconv.Itoa(l.Variables),
			strconv.Itoa(l.Rules),
			strconv.FormatFloat(l.ScoreScale, 'f', -1, 64),
			status,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Found %d scorecards (%d valid)\n", len(listings), valid)
	return err
}
