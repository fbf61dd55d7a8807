package runstore

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// PrintRunStatus writes run store status information to w.
func PrintRunStatus(w io.Writer, status schema.RunStoreStatus) {
	fmt.Fprintf(w, "Run Store Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Total Records Seen: %d\n", status.TotalRecords)
		fmt.Fprintf(w, "Total Results Stored: %d\n", status.TotalResults)
		if len(status.LastScorecards) > 0 {
			fmt.Fprintf(w, "Recent Scorecards: %s\n", strings.Join(status.LastScorecards, ", "))
		}
	}
	fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
