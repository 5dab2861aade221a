package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/executor"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func printHeader(w io.Writer, command, runID, runDir string) {
	fmt.Fprintf(w, "\n%stranslator-runner %s%s %s(%s)%s\n",
		color(colorBold), command, color(colorReset), color(colorGray), runID, color(colorReset))
	fmt.Fprintf(w, "  Artifacts: %s\n", runDir)
	fmt.Fprintln(w, strings.Repeat("─", 60))
}

func printStepStart(w io.Writer, idx, total int, name string) {
	fmt.Fprintf(w, "  %s[%d/%d]%s %s\n", color(colorCyan), idx+1, total, color(colorReset), name)
}

func printStepEnd(w io.Writer, sr executor.StepResult) {
	durStr := formatDuration(sr.Duration.Milliseconds())

	switch sr.Status {
	case core.StatusPassed:
		symbol, symbolColor := "✓", color(colorGreen)
		if len(sr.Skips) > 0 {
			symbol, symbolColor = "⚠", color(colorYellow)
		}
		fmt.Fprintf(w, "    %s%s%s %s %s(%s)%s\n",
			symbolColor, symbol, color(colorReset), sr.Name, color(colorGray), durStr, color(colorReset))
		for _, skip := range sr.Skips {
			fmt.Fprintf(w, "      %s╰─%s %s\n", color(colorGray), color(colorReset), skip)
		}
	case core.StatusErrored:
		fmt.Fprintf(w, "    %s✗%s %s (%s)\n", color(colorRed), color(colorReset), sr.Name, durStr)
		if sr.Error != nil {
			fmt.Fprintf(w, "      %s╰─%s %v\n", color(colorGray), color(colorReset), sr.Error)
		}
	case core.StatusSkipped:
		fmt.Fprintf(w, "    %s-%s %s %s(skipped)%s\n", color(colorGray), color(colorReset), sr.Name, color(colorGray), color(colorReset))
	}
}

func printSummary(w io.Writer, passed bool, durationMs int64, reportPath string) {
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if passed {
		fmt.Fprintf(w, "%s✓ passed%s %s%s%s\n", color(colorGreen), color(colorReset), color(colorGray), formatDuration(durationMs), color(colorReset))
	} else {
		fmt.Fprintf(w, "%s✗ failed%s %s%s%s\n", color(colorRed), color(colorReset), color(colorGray), formatDuration(durationMs), color(colorReset))
	}
	if reportPath != "" {
		fmt.Fprintf(w, "  Report: %s\n", reportPath)
	}
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
