package mcp

import (
	"fmt"
	"strings"

	"github.com/mailmind-ai/mailmind/pkg/digest"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

// formatReply renders a gated reply with its verdict.
func formatReply(resp models.GatedResponse) string {
	var b strings.Builder
	b.WriteString(resp.Text)
	b.WriteString("\n\n")
	if resp.Accepted {
		fmt.Fprintf(&b, "(accepted, confidence %.2f)", resp.Confidence)
	} else {
		fmt.Fprintf(&b, "(rejected: %s)", resp.Annotation)
	}
	return b.String()
}

// formatSummaries renders per-message summaries as readable text.
func formatSummaries(summaries []digest.Summary) string {
	if len(summaries) == 0 {
		return "No unread messages."
	}
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s — %s\n", s.From, s.Subject)
		fmt.Fprintf(&b, "  %s\n", s.Text)
		if !s.Accepted {
			fmt.Fprintf(&b, "  (confidence %.2f, below threshold)\n", s.Confidence)
		}
	}
	return b.String()
}

// formatCacheStats renders cache metrics.
func formatCacheStats(stats models.CacheStats, durable bool) string {
	mode := "durable"
	if !durable {
		mode = "in-memory (degraded)"
	}
	total := stats.Hits + stats.Misses
	rate := 0.0
	if total > 0 {
		rate = float64(stats.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Entries: %d\nHits:    %d\nMisses:  %d\nHit rate: %.1f%%\nMode:    %s",
		stats.Entries, stats.Hits, stats.Misses, rate, mode)
}

// formatRecords renders interaction-log records as a text table.
func formatRecords(records []models.LogRecord) string {
	if len(records) == 0 {
		return "No interactions logged."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-8s %-10s %5s %5s %6s  %s\n",
		"Time", "Task", "Model", "Hit", "OK", "Conf", "Input")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range records {
		status := yesNo(r.Accepted)
		if r.Error != "" {
			status = "ERR"
		}
		fmt.Fprintf(&b, "%-20s %-8s %-10s %5s %5s %6.2f  %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Task, r.ModelID,
			yesNo(r.CacheHit), status, r.Confidence,
			r.InputPreview)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
