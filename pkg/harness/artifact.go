package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionReport is the record of one session written for CI consumption.
type SessionReport struct {
	SessionID    string         `json:"session_id"`
	Mode         string         `json:"mode"`
	GridURL      string         `json:"grid_url,omitempty"`
	Headless     bool           `json:"headless"`
	Capabilities map[string]any `json:"capabilities"`
	Overridden   []string       `json:"overridden"`
	Defaulted    []string       `json:"defaulted"`
	Passed       bool           `json:"passed"`
	BuildID      string         `json:"build_id,omitempty"`
	ReportError  string         `json:"report_error,omitempty"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	Duration     time.Duration  `json:"duration"`
}

// NewSessionReport combines a session's configuration and verdict.
func NewSessionReport(sessionID string, cfg SessionConfig, verdict Verdict, start, end time.Time) *SessionReport {
	report := &SessionReport{
		SessionID:  sessionID,
		Mode:       cfg.Mode.String(),
		GridURL:    cfg.Mode.URL,
		Headless:   cfg.Headless,
		Overridden: cfg.Overridden,
		Defaulted:  cfg.Defaulted,
		Passed:     verdict.Passed,
		BuildID:    verdict.BuildID,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
	}
	if cfg.Capabilities != nil {
		report.Capabilities = cfg.Capabilities.Map()
	}
	if verdict.ReportErr != nil {
		report.ReportError = verdict.ReportErr.Error()
	}
	return report
}

// ArtifactWriter writes session reports into a directory.
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes session.json and summary.md.
func (w *ArtifactWriter) WriteAll(report *SessionReport) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteSessionJSON(report); err != nil {
		return fmt.Errorf("failed to write session JSON: %w", err)
	}

	if err := w.WriteSummaryMarkdown(report); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}

	return nil
}

// WriteSessionJSON writes the full report as JSON
func (w *ArtifactWriter) WriteSessionJSON(report *SessionReport) error {
	path := filepath.Join(w.outputDir, "session.json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session report: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write session JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(report *SessionReport) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder

	md.WriteString("# Session Summary\n\n")
	md.WriteString(fmt.Sprintf("**Session:** %s\n\n", report.SessionID))
	if report.GridURL != "" {
		md.WriteString(fmt.Sprintf("**Mode:** %s (%s)\n\n", report.Mode, report.GridURL))
	} else {
		md.WriteString(fmt.Sprintf("**Mode:** %s\n\n", report.Mode))
	}
	build := report.BuildID
	if build == "" {
		build = "none"
	}
	md.WriteString(fmt.Sprintf("**Build:** %s\n\n", build))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", report.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", report.Duration))

	md.WriteString("## Result\n\n")
	if report.Passed {
		md.WriteString("✅ **Passed**\n\n")
	} else {
		md.WriteString("❌ **Failed**\n\n")
	}
	if report.ReportError != "" {
		md.WriteString(fmt.Sprintf("Verdict not recorded: %s\n\n", report.ReportError))
	}

	if len(report.Overridden) > 0 {
		md.WriteString("## Overridden Capabilities\n\n")
		for _, name := range report.Overridden {
			md.WriteString(fmt.Sprintf("- `%s` = `%v`\n", name, report.Capabilities[name]))
		}
		md.WriteString("\n")
	}

	md.WriteString(fmt.Sprintf("%d capabilities defaulted.\n", len(report.Defaulted)))

	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}
