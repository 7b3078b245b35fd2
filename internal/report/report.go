package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/wikibots/redirect-patroller/internal/logging"
)

type Summary struct {
	Total       int         `json:"total"`
	Patrollable int         `json:"patrollable"`
	Rejected    int         `json:"rejected"`
	Trusted     int         `json:"trusted"`
	Patrolled   int         `json:"patrolled"`
	Failed      int         `json:"failed"`
	DryRun      int         `json:"dry_run"`
	Runs        int         `json:"runs"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	TopRules    []CountItem `json:"top_rules"`
	TopFailures []CountItem `json:"top_failures"`
	TopCreators []CountItem `json:"top_rejected_creators"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Reader loads a decision log, keeping entries newer than Since and, when
// RunID is set, only entries of that run.
type Reader struct {
	Since time.Time
	RunID string
}

func (r *Reader) Read(path string) ([]logging.Decision, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var decisions []logging.Decision
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var d logging.Decision
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !r.Since.IsZero() && d.Timestamp.Before(r.Since) {
			continue
		}
		if r.RunID != "" && d.RunID != r.RunID {
			continue
		}
		decisions = append(decisions, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return decisions, nil
}

func Summarize(decisions []logging.Decision) Summary {
	var summary Summary
	if len(decisions) == 0 {
		return summary
	}

	summary.Start = decisions[0].Timestamp
	summary.End = decisions[0].Timestamp

	ruleCounts := map[string]int{}
	failureCounts := map[string]int{}
	creatorCounts := map[string]int{}
	runs := map[string]struct{}{}

	for _, d := range decisions {
		summary.Total++
		if d.Timestamp.Before(summary.Start) {
			summary.Start = d.Timestamp
		}
		if d.Timestamp.After(summary.End) {
			summary.End = d.Timestamp
		}
		if d.RunID != "" {
			runs[d.RunID] = struct{}{}
		}

		if d.Patrol {
			summary.Patrollable++
		} else {
			summary.Rejected++
			creatorCounts[d.Creator]++
		}
		switch {
		case d.Trusted:
			summary.Trusted++
			ruleCounts["trusted"]++
		case d.Rule != "":
			ruleCounts[d.Rule]++
		}

		switch d.Action {
		case logging.ActionPatrolled:
			summary.Patrolled++
		case logging.ActionFailed:
			summary.Failed++
			failureCounts[defaultKey(d.ErrorCode)]++
		case logging.ActionDryRun:
			summary.DryRun++
		}
	}

	summary.Runs = len(runs)
	summary.TopRules = topCounts(ruleCounts, 5)
	summary.TopFailures = topCounts(failureCounts, 5)
	summary.TopCreators = topCounts(creatorCounts, 5)

	return summary
}

func defaultKey(code string) string {
	if code == "" {
		return "Unknown"
	}
	return code
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func RenderText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Runs: %d\n", summary.Runs)
	fmt.Fprintf(&b, "Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "Patrollable: %d (trusted %d)\n", summary.Patrollable, summary.Trusted)
	fmt.Fprintf(&b, "Rejected: %d\n", summary.Rejected)
	fmt.Fprintf(&b, "Patrolled: %d\n", summary.Patrolled)
	fmt.Fprintf(&b, "Failed: %d\n", summary.Failed)
	fmt.Fprintf(&b, "Dry run: %d\n", summary.DryRun)

	writeCounts(&b, "Top rules", summary.TopRules)
	writeCounts(&b, "Top failures", summary.TopFailures)
	writeCounts(&b, "Top rejected creators", summary.TopCreators)

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# Redirect patrol report\n\n")
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Runs: %d\n", summary.Runs)
	fmt.Fprintf(&b, "- Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "- Patrollable: %d (trusted %d)\n", summary.Patrollable, summary.Trusted)
	fmt.Fprintf(&b, "- Rejected: %d\n", summary.Rejected)
	fmt.Fprintf(&b, "- Patrolled: %d\n", summary.Patrolled)
	fmt.Fprintf(&b, "- Failed: %d\n", summary.Failed)
	fmt.Fprintf(&b, "- Dry run: %d\n\n", summary.DryRun)

	writeCountsMarkdown(&b, "Top rules", summary.TopRules)
	writeCountsMarkdown(&b, "Top failures", summary.TopFailures)
	writeCountsMarkdown(&b, "Top rejected creators", summary.TopCreators)

	return b.String()
}

func RenderJSON(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
}

func writeCountsMarkdown(b *strings.Builder, title string, items []CountItem) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
	b.WriteString("\n")
}

func WriteOutput(w io.Writer, path string, content []byte) error {
	if path == "" {
		_, err := io.Copy(w, bytes.NewReader(content))
		return err
	}
	return os.WriteFile(path, content, 0o600)
}
