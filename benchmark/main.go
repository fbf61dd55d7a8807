// Package main provides a performance benchmarking tool for the Scorecard CLI.
// It generates synthetic applicant files of increasing size, runs bulk
// evaluation on each several times across worker counts and tracking
// backends, treating the first successful run as cold and averaging the rest
// as warm, and writes a CSV for performance analysis and documentation.
//
// Prerequisites:
// - scorecard binary installed and available in PATH
//
// Usage: go run benchmark/main.go [scorecard-file]
//
//	scorecard-file: Scorecard to benchmark (e.g. core/testdata/retail.yaml)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run.
type BenchmarkResult struct {
	Records  int
	Workers  int
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ScorecardPath string
	WorkDir       string
	Timeout       time.Duration
	Runs          int
	Sizes         []int
	Workers       []int
	Backends      []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [scorecard-file]\n", os.Args[0])
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "scorecard-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		ScorecardPath: os.Args[1],
		WorkDir:       workDir,
		Timeout:       5 * time.Minute,
		Runs:          4,
		Sizes:         []int{1_000, 10_000, 100_000, 500_000},
		Workers:       []int{1, 4, 14},
		Backends:      []string{"none", "sqlite"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the scorecard binary and file exist and
// that the scorecard validates.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("scorecard"); err != nil {
		return fmt.Errorf("scorecard binary not found in PATH")
	}
	if _, err := os.Stat(config.ScorecardPath); err != nil {
		return fmt.Errorf("scorecard %s not found: %w", config.ScorecardPath, err)
	}
	if output, err := exec.Command("scorecard", "validate", config.ScorecardPath).CombinedOutput(); err != nil {
		return fmt.Errorf("scorecard does not validate: %v\n%s", err, output)
	}
	return nil
}

// generateApplicants writes n synthetic applicants as CSV. About one row in
// fifty leaves the income empty so the missing-field path is exercised.
func generateApplicants(path string, n int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(uint64(n), 2024))
	w := csv.NewWriter(file)
	if err := w.Write([]string{"credit_score", "monthly_income", "debt_to_income", "employment_years"}); err != nil {
		return err
	}
	for range n {
		income := strconv.Itoa(10_000 + rng.IntN(190_000))
		if rng.IntN(50) == 0 {
			income = ""
		}
		row := []string{
			strconv.Itoa(300 + rng.IntN(551)),
			income,
			strconv.FormatFloat(rng.Float64()*0.8, 'f', 3, 64),
			strconv.Itoa(rng.IntN(30)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// runBenchmarks executes the bulk command across every size, worker count and backend.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, workers %v, backends %v, %d runs each\n",
		len(config.Sizes), config.Timeout, config.Workers, config.Backends, config.Runs)

	dbPath := filepath.Join(config.WorkDir, "runs.db")
	for _, size := range config.Sizes {
		recordsPath := filepath.Join(config.WorkDir, fmt.Sprintf("applicants_%d.csv", size))
		if err := generateApplicants(recordsPath, size); err != nil {
			return nil, fmt.Errorf("failed to generate %d applicants: %w", size, err)
		}
		fmt.Printf("Benchmarking %d records\n", size)

		for _, workers := range config.Workers {
			for _, backend := range config.Backends {
				args := []string{
					"bulk", config.ScorecardPath, recordsPath,
					"--workers", strconv.Itoa(workers),
					"--backend", backend,
					"--output", "json",
				}
				if backend == "sqlite" {
					args = append(args, "--db-connect", dbPath)
				}
				results = append(results, runBenchmarkSuite(config, size, workers, backend, args))
			}
		}
	}

	return results, nil
}

// runBenchmarkSuite runs one configuration config.Runs times.
func runBenchmarkSuite(config BenchmarkConfig, size, workers int, backend string, args []string) BenchmarkResult {
	var times []float64
	for range config.Runs {
		if elapsed, ok := runOnce(config.Timeout, args); ok {
			times = append(times, elapsed)
		}
	}

	result := BenchmarkResult{Records: size, Workers: workers, Backend: backend, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if warm := times[min(1, len(times)):]; len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  workers=%-2d backend=%-6s cold: %s, warm average: %s\n", workers, backend, result.ColdTime, result.WarmTime)
	return result
}

// runOnce times a single invocation, discarding its output.
func runOnce(timeout time.Duration, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "scorecard", args...)
	if err := cmd.Run(); err != nil {
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/scorecard_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"records", "workers", "backend", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		row := []string{strconv.Itoa(r.Records), strconv.Itoa(r.Workers), r.Backend, r.ColdTime, r.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %7d records, %2d workers, %-6s: Cold: %s, Warm: %s\n", r.Records, r.Workers, r.Backend, r.ColdTime, r.WarmTime)
	}
}
