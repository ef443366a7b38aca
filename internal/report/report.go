// Package report renders and persists job results: the final result
// string is parsed back into (key, count) entries, written to a
// timestamped result file, and summarized on the console as a top-20
// frequency table.
package report

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Entry is one parsed "key:value" pair from a final result.
type Entry struct {
	Key   string
	Count int
}

// Parse splits a ", "-joined final result into entries. Entries whose
// value is not an integer are skipped; counting jobs are the only ones
// reported this way.
func Parse(result string) []Entry {
	var entries []Entry
	for _, part := range strings.Split(result, ", ") {
		if part == "" {
			continue
		}
		i := strings.LastIndex(part, ":")
		if i <= 0 {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(part[i+1:]))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Key: part[:i], Count: count})
	}
	return entries
}

// Save writes the job results to mapreduce_result_<timestamp>.txt in
// the working directory and returns the file name.
func Save(result string, inputFiles []string, mapFn, reduceFn string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	outputFile := fmt.Sprintf("mapreduce_result_%s.txt", timestamp)

	var b strings.Builder
	b.WriteString("Map-Reduce Job Results\n")
	b.WriteString("====================\n")
	fmt.Fprintf(&b, "\nTimestamp: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("\nInput Files:\n")
	for i, file := range inputFiles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, file)
	}
	fmt.Fprintf(&b, "\nMap Function: %s\n", mapFn)
	fmt.Fprintf(&b, "Reduce Function: %s\n", reduceFn)
	b.WriteString("\nResults:\n")

	for _, entry := range Parse(result) {
		fmt.Fprintf(&b, "%-30s : %d\n", entry.Key, entry.Count)
	}

	if err := os.WriteFile(outputFile, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	return outputFile, nil
}

// PrintJobInfo announces the job configuration before it runs.
func PrintJobInfo(files []string, serverAddr, mapFn, reduceFn string) {
	fmt.Printf("\n%s\n", color.GreenString("Map-Reduce Job Configuration"))
	fmt.Printf("Server: %s\n", color.YellowString(serverAddr))
	fmt.Printf("Map Function: %s\n", color.YellowString(mapFn))
	fmt.Printf("Reduce Function: %s\n", color.YellowString(reduceFn))
	fmt.Printf("\nProcessing %d files:\n", len(files))
	for _, file := range files {
		fmt.Printf("  - %s\n", file)
	}
}

// PrintSummary renders the top-20 keys by count with a scaled
// distribution bar, plus totals and the saved file location.
func PrintSummary(result, outputFile string) {
	entries := Parse(result)
	if len(entries) == 0 {
		fmt.Println(color.YellowString("No results to display"))
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })

	total := 0
	for _, entry := range entries {
		total += entry.Count
	}

	top := entries
	if len(top) > 20 {
		top = top[:20]
	}

	fmt.Println("\nTop 20 keys by frequency:")
	fmt.Printf("%-8s %-15s %8s %9s %s\n",
		color.BlueString("Rank"),
		color.BlueString("Key"),
		color.BlueString("Count"),
		color.BlueString("Percent"),
		color.BlueString("Distribution"))
	fmt.Println(strings.Repeat("-", 70))

	maxPercent := float64(top[0].Count) / float64(total) * 100
	scale := 15.0 / maxPercent

	for i, entry := range top {
		percent := float64(entry.Count) / float64(total) * 100
		bar := strings.Repeat("#", int(percent*scale))
		fmt.Printf("%-8s %-15s %8s %8.2f%% %s\n",
			color.YellowString("%d", i+1),
			color.CyanString(entry.Key),
			color.YellowString("%d", entry.Count),
			percent,
			color.BlueString(bar))
	}

	fmt.Printf("\n%s\n", color.BlueString("Output Details"))
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("File: %s\n", color.CyanString(outputFile))
	fmt.Printf("Total unique keys: %s\n", color.YellowString("%d", len(entries)))
	fmt.Printf("Total count: %s\n", color.YellowString("%d", total))
}
