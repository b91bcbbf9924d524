package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vulnverified/hostprobe/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// WriteHeader prints the hostprobe banner.
func WriteHeader(w io.Writer, noColor bool) {
	banner := fmt.Sprintf("hostprobe %s", Version)
	if noColor {
		fmt.Fprintf(w, "%s\n\n", banner)
		return
	}
	fmt.Fprintf(w, "%s\n\n", boldStyle.Render(banner))
}

// WriteSummary prints the per-stage host counts, any warnings and where the
// result files were written.
func WriteSummary(w io.Writer, result *engine.RunResult, files Artifacts, noColor bool) {
	s := result.Summary
	rows := [][]string{
		{"Input", strconv.Itoa(s.InputHosts), "normalized"},
		{"Resolved", strconv.Itoa(s.ResolvedHosts), result.Resolver},
		{"Live", strconv.Itoa(s.LiveHosts), result.Prober},
		{"Dead", strconv.Itoa(s.DeadHosts), ""},
	}

	fmt.Fprintln(w)
	if noColor {
		writeSimpleTable(w, summaryHeaders, rows)
	} else {
		fmt.Fprintln(w, styledTable(summaryHeaders, rows))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range result.Warnings {
			if noColor {
				fmt.Fprintf(w, "! %s\n", warning)
			} else {
				fmt.Fprintf(w, "%s %s\n", warnStyle.Render("!"), warning)
			}
		}
	}

	fmt.Fprintln(w)
	writeFile(w, "Live hosts", files.LivePath, noColor)
	writeFile(w, "Probe output", files.RawPath, noColor)
	if files.DeadPath != "" {
		writeFile(w, "Dead hosts", files.DeadPath, noColor)
	}
}

func writeFile(w io.Writer, label, path string, noColor bool) {
	if noColor {
		fmt.Fprintf(w, "%s: %s\n", label, path)
		return
	}
	fmt.Fprintf(w, "%s %s\n", boldStyle.Render(label+":"), mutedStyle.Render(path))
}

var summaryHeaders = []string{"Stage", "Hosts", "Strategy"}

func styledTable(headers []string, rows [][]string) string {
	t := table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
		})

	for _, row := range rows {
		t.Row(row...)
	}
	return t.Render()
}
