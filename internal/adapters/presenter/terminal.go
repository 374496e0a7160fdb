package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorError   = lipgloss.Color("#E74C3C")
	colorSubtle  = lipgloss.Color("#414868")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	trendStyles = map[domain.Trend]lipgloss.Style{
		domain.TrendUp:   lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
		domain.TrendDown: lipgloss.NewStyle().Bold(true).Foreground(colorError),
		domain.TrendFlat: lipgloss.NewStyle().Bold(true).Foreground(colorMuted),
	}

	trendArrows = map[domain.Trend]string{
		domain.TrendUp:   "▲",
		domain.TrendDown: "▼",
		domain.TrendFlat: "■",
	}
)

const (
	sparkBlocks = "▁▂▃▄▅▆▇█"
	sparkGap    = "·"
	// maxSparkWidth folds long windows so year and all reports stay one line per category.
	maxSparkWidth = 60
)

// Render writes a styled one-shot report of v.
func Render(w io.Writer, v ChartView) error {
	_, err := fmt.Fprintln(w, RenderString(v))
	return err
}

func RenderString(v ChartView) string {
	header := titleStyle.Render(fmt.Sprintf("Growth report: %s", v.Period)) +
		"  " + mutedStyle.Render(fmt.Sprintf("as of %s", v.Today))

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("%-10s %-6s %8s %8s  %s", "Category", "Unit", "Current", "Previous", "Trend")),
		mutedStyle.Render(strings.Repeat("─", 44)),
	}

	for i, s := range v.Series {
		avg := v.Categories[i]
		rows = append(rows,
			fmt.Sprintf("%-10s %-6s %7d%% %7d%%  %s", s.Category, s.Unit, avg.Current, avg.Previous, Sparkline(s.Current)),
		)
	}

	style, ok := trendStyles[v.Summary.Trend]
	if !ok {
		style = mutedStyle
	}
	summary := style.Render(trendArrows[v.Summary.Trend]+" ") + v.Summary.Text

	return panelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			strings.Join(rows, "\n"),
			"",
			summary,
		),
	)
}

// Sparkline draws one block per point scaled over 0..100. Long series are averaged into buckets.
func Sparkline(points []domain.Point) string {
	buckets := bucket(points, maxSparkWidth)
	blocks := []rune(sparkBlocks)

	var b strings.Builder
	for _, p := range buckets {
		if !p.Valid {
			b.WriteString(sparkGap)
			continue
		}
		idx := int(p.Value / 100 * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

func bucket(points []domain.Point, width int) []domain.Point {
	if len(points) <= width {
		return points
	}

	out := make([]domain.Point, 0, width)
	size := (len(points) + width - 1) / width
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))

		sum, n := 0.0, 0
		for _, p := range points[start:end] {
			if p.Valid {
				sum += p.Value
				n++
			}
		}
		if n == 0 {
			out = append(out, domain.GapPoint())
			continue
		}
		out = append(out, domain.ValuePoint(sum/float64(n)))
	}
	return out
}
