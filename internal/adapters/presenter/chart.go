package presenter

import (
	"fmt"
	"math"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

var labelLayouts = map[domain.Period]string{
	domain.PeriodWeek:  "Mon 01/02",
	domain.PeriodMonth: "Jan 2",
	domain.PeriodYear:  "Jan 2 2006",
	domain.PeriodAll:   "Jan 2 2006",
}

type SeriesView struct {
	Category domain.Category `json:"category"`
	Unit     string          `json:"unit"`
	Labels   []string        `json:"labels"`
	Current  []domain.Point  `json:"currentSeries"`
	Previous []domain.Point  `json:"previousSeries"`
}

type SummaryView struct {
	CurrentLabel  string       `json:"currentLabel"`
	PreviousLabel string       `json:"previousLabel"`
	CurrentAvg    int          `json:"currentAvg"`
	PreviousAvg   int          `json:"previousAvg"`
	Delta         int          `json:"delta"`
	Trend         domain.Trend `json:"trend"`
	Text          string       `json:"text"`
}

type CategoryAverageView struct {
	Category domain.Category `json:"category"`
	Current  int             `json:"current"`
	Previous int             `json:"previous"`
}

// ChartView is what a chart surface consumes. It holds no logic beyond formatting.
type ChartView struct {
	Period     domain.Period         `json:"period"`
	Today      domain.DateKey        `json:"today"`
	Current    domain.Window         `json:"currentWindow"`
	Previous   domain.Window         `json:"previousWindow"`
	Series     []SeriesView          `json:"series"`
	Categories []CategoryAverageView `json:"categories"`
	Summary    SummaryView           `json:"summary"`
}

func NewChartView(a domain.Analysis) ChartView {
	view := ChartView{
		Period:   a.Period,
		Today:    a.Today,
		Current:  a.Current.Window,
		Previous: a.Previous.Window,
		Summary:  NewSummary(a),
	}

	for _, c := range domain.QuantitativeCategories {
		s := a.Series[c]
		labels := make([]string, len(s.Dates))
		for i, d := range s.Dates {
			labels[i] = Label(a.Period, d)
		}

		view.Series = append(view.Series, SeriesView{
			Category: c,
			Unit:     c.Unit(),
			Labels:   labels,
			Current:  s.Current,
			Previous: s.Previous,
		})

		view.Categories = append(view.Categories, CategoryAverageView{
			Category: c,
			Current:  round(a.Current.CategoryAverages[c]),
			Previous: round(a.Previous.CategoryAverages[c]),
		})
	}

	return view
}

// Label formats a day for the x axis of the given period.
func Label(p domain.Period, d domain.DateKey) string {
	layout, ok := labelLayouts[p]
	if !ok {
		layout = domain.DateKeyLayout
	}
	return d.Time().Format(layout)
}

func NewSummary(a domain.Analysis) SummaryView {
	currentLabel, previousLabel := WindowLabels(a.Period, a.Current.Days, a.Previous.Days)
	current := round(a.Current.Overall)
	previous := round(a.Previous.Overall)

	return SummaryView{
		CurrentLabel:  currentLabel,
		PreviousLabel: previousLabel,
		CurrentAvg:    current,
		PreviousAvg:   previous,
		Delta:         a.Delta,
		Trend:         a.Trend,
		Text: fmt.Sprintf("%s: %d%% vs %s: %d%% (%s, %s)",
			currentLabel, current, previousLabel, previous, signed(a.Delta), a.Trend),
	}
}

func WindowLabels(p domain.Period, currentDays, previousDays int) (string, string) {
	if p == domain.PeriodAll {
		return fmt.Sprintf("Recent half (%d days)", currentDays),
			fmt.Sprintf("Earlier half (%d days)", previousDays)
	}
	return fmt.Sprintf("Last %d days", currentDays), fmt.Sprintf("Previous %d days", previousDays)
}

func signed(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}

func round(v float64) int {
	return int(math.Round(v))
}
