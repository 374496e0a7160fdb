package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPeriod = errors.New("invalid period (must be week, month, year, or all)")

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

var fixedPeriodDays = map[Period]int{
	PeriodWeek:  7,
	PeriodMonth: 30,
	PeriodYear:  365,
}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == PeriodAll {
		return p, nil
	}
	if _, ok := fixedPeriodDays[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// FixedDays returns the window length of week, month and year. It is 0 for all.
func (p Period) FixedDays() int {
	return fixedPeriodDays[p]
}

type WindowDesignation string

const (
	WindowCurrent  WindowDesignation = "current"
	WindowPrevious WindowDesignation = "previous"
)

// Window is an inclusive run of calendar days. A zero-day window has no start or end.
type Window struct {
	Designation WindowDesignation `json:"designation"`
	Start       DateKey           `json:"start,omitempty"`
	End         DateKey           `json:"end,omitempty"`
	Days        int               `json:"days"`
}

// NewWindow builds a window of length days ending on end.
func NewWindow(designation WindowDesignation, end DateKey, days int) Window {
	if days <= 0 {
		return Window{Designation: designation}
	}
	return Window{
		Designation: designation,
		Start:       Shift(end, -(days - 1)),
		End:         end,
		Days:        days,
	}
}

func (w Window) Dates() []DateKey {
	if w.Days == 0 {
		return nil
	}
	return DateRange(w.Start, w.End)
}

// DayPerformance holds the completions of one calendar day.
type DayPerformance struct {
	Date        DateKey              `json:"date"`
	Completions map[Category]float64 `json:"completions"`
	Mindset     float64              `json:"mindset"`
	Overall     float64              `json:"overall"`
}

type WindowScore struct {
	Window           Window               `json:"window"`
	CategoryAverages map[Category]float64 `json:"category_averages"`
	Overall          float64              `json:"overall"`
	Days             int                  `json:"days"`
}

type Trend string

const (
	TrendUp   Trend = "up"
	TrendFlat Trend = "flat"
	TrendDown Trend = "down"
)

func TrendOf(delta int) Trend {
	switch {
	case delta > 0:
		return TrendUp
	case delta < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Point is one chart value. An invalid point is a gap, not a zero.
type Point struct {
	Value float64
	Valid bool
}

func ValuePoint(v float64) Point {
	return Point{Value: v, Valid: true}
}

func GapPoint() Point {
	return Point{}
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Point) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Point{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ValuePoint(v)
	return nil
}

type CategorySeries struct {
	Category Category  `json:"category"`
	Dates    []DateKey `json:"dates"`
	Current  []Point   `json:"current"`
	Previous []Point   `json:"previous"`
}

type Analysis struct {
	Period   Period                      `json:"period"`
	Today    DateKey                     `json:"today"`
	Current  WindowScore                 `json:"current"`
	Previous WindowScore                 `json:"previous"`
	Delta    int                         `json:"delta"`
	Trend    Trend                       `json:"trend"`
	Days     []DayPerformance            `json:"days"`
	Series   map[Category]CategorySeries `json:"series"`
}
