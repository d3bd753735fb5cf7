package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#2CD7C7")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#5C7A84")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(22)
	valueStyle = lipgloss.NewStyle().Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

func printResults(w io.Writer, rows ...row) {
	boxes := make([]string, len(rows))
	for i, r := range rows {
		boxes[i] = renderRow(r)
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, boxes...))
}

func renderRow(r row) string {
	res := r.Result
	lines := []string{
		titleStyle.Render(r.Scenario),
		field("fps", fmt.Sprintf("%.1f", res.FPS)),
		field("avg memory", formatBytes(res.AverageMemoryUsage)),
		field("avg render time", res.AverageRenderTime.Round(time.Microsecond).String()),
		field("interaction latency", res.InteractionLatency.String()),
		field("frames", fmt.Sprintf("%d in %s", res.Frames, res.Duration)),
	}
	for _, n := range r.Notes {
		lines = append(lines, noteStyle.Render(n))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func formatBytes(b float64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%.0f B", b)
	}
	div, exp := float64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", b/div, "KMGTPE"[exp])
}
