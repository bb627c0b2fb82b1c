// Package report renders analysis results for the terminal.
package report

import (
	"fmt"
	"strings"

	"audioprofile/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Width(20)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Render formats res as a titled block. source names the analysed input.
func Render(source string, res pipeline.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(source))
	sb.WriteString("\n\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	row("Tempo", highlightStyle.Render(fmt.Sprintf("%d BPM", res.BPM))+
		mutedStyle.Render(fmt.Sprintf(" (confidence %.2f)", res.Confidence)))
	row("Energy", meter(res.Features.Energy))
	row("Density", meter(res.Features.Density))
	row("Spectral centroid", fmt.Sprintf("%.1f Hz", res.Features.SpectralCentroid))
	row("Spectral rolloff", fmt.Sprintf("%.1f Hz", res.Features.SpectralRolloff))
	row("Zero-crossing rate", fmt.Sprintf("%.4f", res.Features.ZeroCrossingRate))
	sb.WriteString("\n")
	row("Styles", orNone(strings.Join(res.StyleTags, ", ")))
	row("Instruments", orNone(strings.Join(res.ProbableInstruments, ", ")))
	if res.GenreDescription != "" {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(res.GenreDescription))
		sb.WriteString("\n")
	}
	if res.InstrumentDescription != "" {
		sb.WriteString(mutedStyle.Render(res.InstrumentDescription))
		sb.WriteString("\n")
	}

	return sb.String()
}

const meterWidth = 20

// meter draws v in [0,1] as a bar followed by its value.
func meter(v float64) string {
	filled := int(min(max(v, 0), 1)*meterWidth + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
	return fmt.Sprintf("%s %.2f", highlightStyle.Render(bar), v)
}

func orNone(s string) string {
	if s == "" {
		return mutedStyle.Render("none")
	}
	return s
}
