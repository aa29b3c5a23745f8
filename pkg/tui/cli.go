// Package tui renders verification results on the terminal.
// Simple, streaming, no complex TUI - just clean styled output.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// PrintHeader prints the tool banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  CONFORMLY") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Conformance verification for process event logs"))
	fmt.Println()
}

// PrintRun prints the run identifier and inputs.
func PrintRun(runID, logPath, modelPath, method string) {
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Run:"), titleStyle.Render(runID))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Log:"), titleStyle.Render(logPath))
	if modelPath != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Model:"), titleStyle.Render(modelPath))
	}
	fmt.Printf("  %s %s\n", mutedStyle.Render("Method:"), titleStyle.Render(method))
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
}

// FitnessReport holds the numbers shown after a fitness run.
type FitnessReport struct {
	AverageTraceFitness       float64
	PercentageOfFittingTraces float64
	Traces                    int
	Duration                  time.Duration
}

// PrintFitnessReport prints results after a fitness evaluation.
func PrintFitnessReport(report *FitnessReport) {
	fmt.Println()
	if report.PercentageOfFittingTraces >= 100.0 {
		fmt.Println(successStyle.Render("  ✓ LOG FITS MODEL"))
	} else {
		fmt.Println(accentStyle.Render("  ✗ DEVIATIONS FOUND"))
	}
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Avg trace fitness:"),
		titleStyle.Render(fmt.Sprintf("%.4f", report.AverageTraceFitness)))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Fitting traces:"),
		titleStyle.Render(fmt.Sprintf("%.1f%%", report.PercentageOfFittingTraces)))
	fmt.Printf("  %s %s %s\n", mutedStyle.Render("Traces:"),
		titleStyle.Render(fmt.Sprintf("%d", report.Traces)),
		mutedStyle.Render("("+formatDuration(report.Duration)+")"))
	fmt.Println()
}

// PrintValue prints a single named metric, e.g. a precision score.
func PrintValue(name string, value float64) {
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render(name+":"), titleStyle.Render(fmt.Sprintf("%.4f", value)))
	fmt.Println()
}

// PrintViolation prints one deviation line.
func PrintViolation(s string) {
	fmt.Printf("  %s %s\n", accentStyle.Render("✗"), s)
}

// PrintOK prints a success line.
func PrintOK(s string) {
	fmt.Printf("  %s %s\n", successStyle.Render("✓"), s)
}

// PrintInfo prints a muted informational line.
func PrintInfo(s string) {
	fmt.Println(mutedStyle.Render("  " + s))
}

// ShowProgress creates a progress bar for trace processing.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// FormatNumber renders large counts compactly.
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
