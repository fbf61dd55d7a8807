// main is the entrypoint for the scorecard CLI.
package main

import (
	"github.com/huangsam/scorecard/cmd"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
)

func main() {
	err := cmd.Execute()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Profiling shutdown failed", perr)
	}
	runstore.CloseStore()
	if err != nil {
		contract.LogFatal("Cannot run scorecard", err)
	}
}
