// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayRunSummary], [DisplayQuietSummary], [DisplayBenchReport].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatThroughput], [FormatExecutionDuration].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteSummaryFile].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/taskbench/taskbench/internal/bench"
	"github.com/taskbench/taskbench/internal/summary"
	"github.com/taskbench/taskbench/internal/task"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the JSON summary (empty for no file output).
	OutputFile string
	// Quiet mode reduces the summary to one machine-friendly line.
	Quiet bool
	// Verbose includes per-task results in the display.
	Verbose bool
}

// FormatThroughput formats a tasks-per-second rate for display.
func FormatThroughput(tps float64) string {
	return fmt.Sprintf("%.2f tasks/s", tps)
}

// FormatExecutionDuration renders a task duration at a precision that
// matches its magnitude. Synthetic tasks finish anywhere between
// microseconds (failed fast) and seconds (high-intensity io), so a
// fixed unit either loses the short ones or drowns the long ones in
// digits.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// DisplayQuietSummary outputs a run summary as a single line suitable
// for scripting: model, task count, elapsed, throughput.
func DisplayQuietSummary(out io.Writer, s summary.RunSummary) {
	fmt.Fprintf(out, "%s %d/%d %.3fs %s\n",
		s.Model, s.SuccessCount, s.TaskCount, s.ElapsedSeconds, FormatThroughput(s.Throughput))
}

// DisplayRunSummary renders a run summary to the writer according to
// the output configuration.
func DisplayRunSummary(out io.Writer, s summary.RunSummary, cfg OutputConfig) {
	if cfg.Quiet {
		DisplayQuietSummary(out, s)
		return
	}

	fmt.Fprintf(out, "\nRun %s\n", s.RunID)
	fmt.Fprintf(out, "Model:       %s (%d workers)\n", s.Model, s.WorkerCount)
	fmt.Fprintf(out, "Tasks:       %d (%d succeeded, %d failed)\n", s.TaskCount, s.SuccessCount, s.FailureCount)
	fmt.Fprintf(out, "Elapsed:     %.3fs\n", s.ElapsedSeconds)
	fmt.Fprintf(out, "Throughput:  %s\n", FormatThroughput(s.Throughput))
	if s.AvgTaskSeconds > 0 {
		fmt.Fprintf(out, "Avg task:    %.4fs\n", s.AvgTaskSeconds)
	}
	for _, kind := range task.Kinds() {
		if avg, ok := s.AvgByKind[kind]; ok {
			fmt.Fprintf(out, "  avg %-6s %.4fs\n", kind+":", avg)
		}
	}
	if s.Truncated {
		fmt.Fprintf(out, "Truncated:   run hit its deadline; unresolved tasks reported as failures\n")
	}
	displayResourceUsage(out, s)

	if cfg.Verbose {
		displayResults(out, s)
	}
}

// displayResourceUsage summarizes the monitor samples: peak CPU, peak
// memory and peak RSS over the run.
func displayResourceUsage(out io.Writer, s summary.RunSummary) {
	if len(s.Samples) == 0 {
		return
	}
	var peakCPU, peakMem float64
	var peakRSS uint64
	for _, sample := range s.Samples {
		if sample.CPUPercent > peakCPU {
			peakCPU = sample.CPUPercent
		}
		if sample.MemPercent > peakMem {
			peakMem = sample.MemPercent
		}
		if sample.RSSBytes > peakRSS {
			peakRSS = sample.RSSBytes
		}
	}
	fmt.Fprintf(out, "Resources:   peak CPU %.1f%%, peak mem %.1f%%, peak RSS %.1f MB (%d samples)\n",
		peakCPU, peakMem, float64(peakRSS)/(1024*1024), len(s.Samples))

	// GC readings accumulate over the run; the last sample is the total.
	last := s.Samples[len(s.Samples)-1]
	if last.GCCycles > 0 {
		fmt.Fprintf(out, "GC:          %d cycles, %s paused\n", last.GCCycles, last.GCPause)
	}
}

// displayResults lists every task result, one line each.
func displayResults(out io.Writer, s summary.RunSummary) {
	fmt.Fprintf(out, "\n%-8s %-8s %-8s %-10s %-12s %s\n", "task", "worker", "kind", "status", "duration", "detail")
	for _, res := range s.Results {
		detail := res.Reason
		if res.Error != "" {
			detail = fmt.Sprintf("%s: %s", res.Reason, res.Error)
		}
		fmt.Fprintf(out, "%-8d %-8d %-8s %-10s %-12s %s\n",
			res.TaskID, res.WorkerID, res.Kind, res.Status,
			FormatExecutionDuration(res.Duration()), detail)
	}
}

// DisplayBenchReport renders the sweep report as a comparison table,
// grouped by task count.
func DisplayBenchReport(out io.Writer, r bench.Report) {
	fmt.Fprintf(out, "Benchmark Summary\n")
	fmt.Fprintf(out, "=================\n")

	for _, taskCount := range r.TaskCounts {
		fmt.Fprintf(out, "\nTask Count: %d\n", taskCount)
		fmt.Fprintf(out, "%-15s %-10s %-12s %-14s %s\n", "Model", "Workers", "Time (s)", "Tasks/s", "Failures")
		for _, model := range []string{"single", "threaded", "multiprocess"} {
			for _, s := range r.Runs[model] {
				if s.TaskCount != taskCount {
					continue
				}
				fmt.Fprintf(out, "%-15s %-10d %-12.3f %-14.2f %d\n",
					model, s.WorkerCount, s.ElapsedSeconds, s.Throughput, s.FailureCount)
			}
		}
	}
}

// WriteSummaryFile writes a run summary as indented JSON to path,
// creating parent directories as needed.
func WriteSummaryFile(path string, s summary.RunSummary) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
