package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/harness"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	overriddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	defaultStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	remoteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	localStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("76")).Bold(true)
)

func renderTable(entries []capabilities.Entry, overridden map[string]bool) string {
	width := len("CAPABILITY")
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", width, "CAPABILITY")))
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("VALUE"))
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("SOURCE"))

	for _, e := range entries {
		source, style := "default", defaultStyle
		if overridden[e.Name] {
			source, style = "override", overriddenStyle
		}
		fmt.Fprintf(&b, "\n%-*s  %s  %s", width, e.Name, style.Render(fmt.Sprintf("[%v]", e.Value)), style.Render(source))
	}
	return b.String()
}

func renderSummary(cfg harness.SessionConfig) string {
	mode := localStyle.Render("local")
	if cfg.Mode.Remote {
		mode = remoteStyle.Render("remote") + " " + cfg.Mode.URL
	}
	return fmt.Sprintf("\n%d overridden, %d defaulted, mode: %s", len(cfg.Overridden), len(cfg.Defaulted), mode)
}
