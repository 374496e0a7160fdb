package services

import (
	"math"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

// Windows sizes the current and previous windows of period as seen on today.
//
// week, month and year compare two back-to-back windows of the same length,
// the current one ending today. all splits the recorded lifetime in two, the
// current half taking the extra day when the total is odd.
func Windows(history domain.History, period domain.Period, today domain.DateKey) (domain.Window, domain.Window) {
	var currentDays, previousDays int

	if days := period.FixedDays(); days > 0 {
		currentDays, previousDays = days, days
	} else {
		first, ok := history.EarliestKey()
		if !ok || first.After(today) {
			currentDays, previousDays = 1, 0
		} else {
			total := domain.DaysBetween(first, today) + 1
			currentDays = (total + 1) / 2
			previousDays = total / 2
		}
	}

	current := domain.NewWindow(domain.WindowCurrent, today, currentDays)

	previousEnd := domain.Shift(today, -currentDays)
	previous := domain.NewWindow(domain.WindowPrevious, previousEnd, previousDays)

	return current, previous
}

// Performance returns one entry per calendar day of w, absent days scored at defaults.
func Performance(history domain.History, w domain.Window) []domain.DayPerformance {
	dates := w.Dates()
	days := make([]domain.DayPerformance, 0, len(dates))

	for _, date := range dates {
		rec := history.Materialized(date)

		perf := domain.DayPerformance{
			Date:        date,
			Completions: make(map[domain.Category]float64, len(domain.QuantitativeCategories)),
			Mindset:     domain.Completion(rec, domain.CategoryMindset),
		}

		sum := 0.0
		for _, c := range domain.QuantitativeCategories {
			v := domain.Completion(rec, c)
			perf.Completions[c] = v
			sum += v
		}
		perf.Overall = sum / float64(len(domain.QuantitativeCategories))

		days = append(days, perf)
	}

	return days
}

// Aggregate averages the per-day completions. An empty window scores 0 everywhere.
func Aggregate(w domain.Window, days []domain.DayPerformance) domain.WindowScore {
	score := domain.WindowScore{
		Window:           w,
		CategoryAverages: make(map[domain.Category]float64, len(domain.QuantitativeCategories)),
		Days:             len(days),
	}

	for _, c := range domain.QuantitativeCategories {
		score.CategoryAverages[c] = 0
	}
	if len(days) == 0 {
		return score
	}

	for _, c := range domain.QuantitativeCategories {
		sum := 0.0
		for _, d := range days {
			sum += d.Completions[c]
		}
		score.CategoryAverages[c] = sum / float64(len(days))
	}

	total := 0.0
	for _, c := range domain.QuantitativeCategories {
		total += score.CategoryAverages[c]
	}
	score.Overall = total / float64(len(domain.QuantitativeCategories))

	return score
}

// Series aligns the previous window onto the current one, point by point.
// Missing previous points are gaps so a shorter window never plots as a drop to 0.
func Series(current, previous []domain.DayPerformance) map[domain.Category]domain.CategorySeries {
	dates := make([]domain.DateKey, len(current))
	for i, d := range current {
		dates[i] = d.Date
	}

	out := make(map[domain.Category]domain.CategorySeries, len(domain.QuantitativeCategories))
	for _, c := range domain.QuantitativeCategories {
		s := domain.CategorySeries{
			Category: c,
			Dates:    dates,
			Current:  make([]domain.Point, len(current)),
			Previous: make([]domain.Point, len(current)),
		}

		for i, d := range current {
			s.Current[i] = domain.ValuePoint(d.Completions[c])

			if i < len(previous) {
				s.Previous[i] = domain.ValuePoint(previous[i].Completions[c])
			} else {
				s.Previous[i] = domain.GapPoint()
			}
		}

		out[c] = s
	}

	return out
}

// Analyze is a pure function of its inputs: same history, period and day give the same result.
func Analyze(history domain.History, period domain.Period, today domain.DateKey) domain.Analysis {
	currentWindow, previousWindow := Windows(history, period, today)

	currentDays := Performance(history, currentWindow)
	previousDays := Performance(history, previousWindow)

	current := Aggregate(currentWindow, currentDays)
	previous := Aggregate(previousWindow, previousDays)

	delta := int(math.Round(current.Overall)) - int(math.Round(previous.Overall))

	return domain.Analysis{
		Period:   period,
		Today:    today,
		Current:  current,
		Previous: previous,
		Delta:    delta,
		Trend:    domain.TrendOf(delta),
		Days:     currentDays,
		Series:   Series(currentDays, previousDays),
	}
}
