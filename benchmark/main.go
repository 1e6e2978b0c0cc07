// Package main provides a performance benchmarking tool for the depthaudit CLI.
// It measures execution times of each report command across datasets of
// different sizes, treating the first successful run as cold and averaging the
// rest as warm, and writes the results as CSV.
//
// Prerequisites:
//   - depthaudit binary installed and available in PATH
//   - One directory per dataset under the base directory, each holding
//     hits.json, truth.json and rotations.json
//
// Usage: go run benchmark/main.go [dataset-base-dir]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"
)

// BenchmarkResult holds the cold and warm times of one command on one dataset.
type BenchmarkResult struct {
	Dataset  string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataBase string
	Timeout  time.Duration
	Runs     int
	Datasets []string
	Commands [][]string
}

// datasetFiles are the inputs every dataset directory must hold.
var datasetFiles = []string{"hits.json", "truth.json", "rotations.json"}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [dataset-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataBase: os.Args[1],
		Timeout:  5 * time.Minute,
		Runs:     4,
		Commands: [][]string{
			{"summary"},
			{"workers"},
			{"images"},
			{"wrongness"},
			{"agreement"},
			{"scores"},
			{"depthstats"},
		},
	}

	datasets, err := discoverDatasets(config.DataBase)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}
	config.Datasets = datasets

	if _, err := exec.LookPath("depthaudit"); err != nil {
		fmt.Printf("Prerequisites check failed: depthaudit binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// discoverDatasets lists the subdirectories of base that hold a full dataset.
func discoverDatasets(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var datasets []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		complete := true
		for _, f := range datasetFiles {
			if _, err := os.Stat(filepath.Join(base, e.Name(), f)); err != nil {
				complete = false
				break
			}
		}
		if complete {
			datasets = append(datasets, e.Name())
		}
	}
	if len(datasets) == 0 {
		return nil, fmt.Errorf("no complete datasets under %s", base)
	}
	slices.Sort(datasets)
	return datasets, nil
}

// runBenchmarks executes every command against every dataset.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %d commands, %v timeout, %d runs\n",
		len(config.Datasets), len(config.Commands), config.Timeout, config.Runs)

	for _, dataset := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", dataset)
		dir := filepath.Join(config.DataBase, dataset)
		for _, args := range config.Commands {
			results = append(results, runBenchmarkSuite(config, dataset, dir, args))
		}
	}
	return results
}

// runBenchmarkSuite times one command and summarizes its runs.
func runBenchmarkSuite(config BenchmarkConfig, dataset, dir string, args []string) BenchmarkResult {
	cold, warm := runBenchmark(config, dir, args)

	coldStr := "TIMEOUT"
	if cold > 0 {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}
	warmStr := "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmStr = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  %-12s cold: %s, warm average: %s\n", args[0], coldStr, warmStr)
	return BenchmarkResult{Dataset: dataset, Command: args[0], ColdTime: coldStr, WarmTime: warmStr}
}

// runBenchmark executes a depthaudit command several times inside the dataset
// directory and returns the cold time and the warm times in seconds.
func runBenchmark(config BenchmarkConfig, dir string, args []string) (coldTime float64, warmTimes []float64) {
	full := append(slices.Clone(args), "--output", "json", "--color", "no")

	var times []float64
	for range config.Runs {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()

		cmd := exec.CommandContext(ctx, "depthaudit", full...)
		cmd.Dir = dir
		err := cmd.Run()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("depthaudit_benchmark_%s.csv", timestamp))

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
	if err := writer.Write([]string{"dataset", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by dataset.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	current := ""
	for _, result := range results {
		if result.Dataset != current {
			current = result.Dataset
			fmt.Printf("%s:\n", current)
		}
		fmt.Printf("  %-12s: Cold: %s, Warm: %s\n", result.Command, result.ColdTime, result.WarmTime)
	}
}
