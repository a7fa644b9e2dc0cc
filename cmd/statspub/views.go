package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"statspub/internal/status"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

var titleCaser = cases.Title(language.BritishEnglish)

// displayTitle derives a human-readable title from a publication or release
// slug.
func displayTitle(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "-"
	}
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}

// formatOverall renders an overall stage as a display label, colorized when
// the output is a terminal.
func formatOverall(overall status.Overall, colorize bool) string {
	label := overall.Label()
	if !colorize {
		return label
	}
	switch overall {
	case status.OverallComplete:
		return ansiGreen + label + ansiReset
	case status.OverallFailed, status.OverallInvalid:
		return ansiRed + label + ansiReset
	case status.OverallStarted, status.OverallScheduled:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func formatState(state status.State) string {
	return state.Label()
}

func formatDisplayTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02 15:04")
}

func formatPublishAt(value *time.Time, immediate bool) string {
	if immediate {
		return "immediate"
	}
	if value == nil {
		return "-"
	}
	return value.UTC().Format("2006-01-02 15:04")
}

func buildStatusListRows(records []*status.Record, colorize bool) [][]string {
	sorted := make([]*status.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ReleaseStatusID.String() < sorted[j].ReleaseStatusID.String()
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	rows := make([][]string, 0, len(sorted))
	for _, record := range sorted {
		rows = append(rows, []string{
			record.ReleaseVersionID.String(),
			displayTitle(record.PublicationSlug),
			formatOverall(record.Overall, colorize),
			formatPublishAt(record.PublishAt, record.Immediate),
			formatDisplayTime(record.UpdatedAt),
		})
	}
	return rows
}

func buildStatsRows(stats map[status.Overall]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]status.Overall, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key.Label(), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func renderRecordDetail(record *status.Record, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Release version: %s\n", record.ReleaseVersionID)
	fmt.Fprintf(&b, "Attempt:         %s\n", record.ReleaseStatusID)
	if record.PublicationSlug != "" {
		fmt.Fprintf(&b, "Publication:     %s (%s)\n", displayTitle(record.PublicationSlug), record.PublicationSlug)
	}
	if record.ReleaseSlug != "" {
		fmt.Fprintf(&b, "Release:         %s\n", record.ReleaseSlug)
	}
	fmt.Fprintf(&b, "Publish at:      %s\n", formatPublishAt(record.PublishAt, record.Immediate))
	fmt.Fprintf(&b, "Overall:         %s\n", formatOverall(record.Overall, colorize))
	fmt.Fprintf(&b, "Content:         %s\n", formatState(record.Content))
	fmt.Fprintf(&b, "Files:           %s\n", formatState(record.Files))
	fmt.Fprintf(&b, "Publishing:      %s\n", formatState(record.Publishing))
	if len(record.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range record.Events {
			fmt.Fprintf(&b, "  %s  %s\n", event.At.UTC().Format(time.RFC3339), event.Message)
		}
	}
	return b.String()
}
