package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown category (must be academic, physical, character, or mindset)")
	ErrNotQuantitative = errors.New("category does not track progress against a goal")
	ErrInvalidGoal     = errors.New("goal must be a positive number")
	ErrInvalidProgress = errors.New("progress must be a positive number")
)

type Category string

const (
	CategoryAcademic  Category = "academic"
	CategoryPhysical  Category = "physical"
	CategoryCharacter Category = "character"
	CategoryMindset   Category = "mindset"
)

// Categories lists every tracked area in display order.
var Categories = []Category{CategoryAcademic, CategoryPhysical, CategoryCharacter, CategoryMindset}

// QuantitativeCategories are the areas averaged by the analysis engine.
var QuantitativeCategories = []Category{CategoryAcademic, CategoryPhysical, CategoryCharacter}

var categoryUnits = map[Category]string{
	CategoryAcademic:  "Hrs",
	CategoryPhysical:  "Min",
	CategoryCharacter: "Pages",
	CategoryMindset:   "Affirmed",
}

var defaultGoals = map[Category]float64{
	CategoryAcademic:  2,
	CategoryPhysical:  30,
	CategoryCharacter: 10,
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryUnits[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) Quantitative() bool {
	_, ok := defaultGoals[c]
	return ok
}

func (c Category) Unit() string {
	return categoryUnits[c]
}

func (c Category) DefaultGoal() float64 {
	return defaultGoals[c]
}

type Tracker struct {
	Progress float64 `json:"progress"`
	Goal     float64 `json:"goal"`
}

type CharacterTracker struct {
	Progress    float64 `json:"progress"`
	Goal        float64 `json:"goal"`
	SocialCheck bool    `json:"socialCheck"`
}

type MindsetTracker struct {
	Is100 bool `json:"is100"`
}

// DailyRecord is the fully materialized state of one day.
type DailyRecord struct {
	Date      DateKey          `json:"date,omitempty"`
	Academic  Tracker          `json:"academic"`
	Physical  Tracker          `json:"physical"`
	Character CharacterTracker `json:"character"`
	Mindset   MindsetTracker   `json:"mindset"`
}

// StoredTracker is the as-persisted shape of a category. Every field is optional.
type StoredTracker struct {
	Progress    *float64 `json:"progress,omitempty"`
	Goal        *float64 `json:"goal,omitempty"`
	SocialCheck *bool    `json:"socialCheck,omitempty"`
	Is100       *bool    `json:"is100,omitempty"`
}

// StoredRecord is the partial record found in a history document.
type StoredRecord struct {
	Date      DateKey        `json:"date,omitempty"`
	Academic  *StoredTracker `json:"academic,omitempty"`
	Physical  *StoredTracker `json:"physical,omitempty"`
	Character *StoredTracker `json:"character,omitempty"`
	Mindset   *StoredTracker `json:"mindset,omitempty"`
}

func DefaultRecord() DailyRecord {
	return DailyRecord{
		Academic:  Tracker{Progress: 0, Goal: defaultGoals[CategoryAcademic]},
		Physical:  Tracker{Progress: 0, Goal: defaultGoals[CategoryPhysical]},
		Character: CharacterTracker{Progress: 0, Goal: defaultGoals[CategoryCharacter], SocialCheck: false},
		Mindset:   MindsetTracker{Is100: false},
	}
}

// Materialize overlays a stored record onto DefaultRecord, category by category.
//
// Fallback table for a present category object:
//
//	progress  missing, negative, NaN or Inf  -> 0
//	goal      missing, <= 0, NaN or Inf      -> default goal of the category
//	booleans  missing                        -> false
//
// An absent category keeps the default object untouched.
func Materialize(stored *StoredRecord) DailyRecord {
	rec := DefaultRecord()
	if stored == nil {
		return rec
	}

	rec.Date = stored.Date

	if stored.Academic != nil {
		rec.Academic = materializeTracker(stored.Academic, CategoryAcademic)
	}
	if stored.Physical != nil {
		rec.Physical = materializeTracker(stored.Physical, CategoryPhysical)
	}
	if stored.Character != nil {
		t := materializeTracker(stored.Character, CategoryCharacter)
		rec.Character = CharacterTracker{
			Progress:    t.Progress,
			Goal:        t.Goal,
			SocialCheck: boolOrFalse(stored.Character.SocialCheck),
		}
	}
	if stored.Mindset != nil {
		rec.Mindset = MindsetTracker{Is100: boolOrFalse(stored.Mindset.Is100)}
	}

	return rec
}

func materializeTracker(s *StoredTracker, c Category) Tracker {
	t := Tracker{Progress: 0, Goal: c.DefaultGoal()}

	if s.Progress != nil && isFinite(*s.Progress) && *s.Progress > 0 {
		t.Progress = *s.Progress
	}
	if s.Goal != nil && isFinite(*s.Goal) && *s.Goal > 0 {
		t.Goal = *s.Goal
	}

	return t
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Stored converts a full record back to its persisted shape.
func (r DailyRecord) Stored() StoredRecord {
	return StoredRecord{
		Date: r.Date,
		Academic: &StoredTracker{
			Progress: ptr(r.Academic.Progress),
			Goal:     ptr(r.Academic.Goal),
		},
		Physical: &StoredTracker{
			Progress: ptr(r.Physical.Progress),
			Goal:     ptr(r.Physical.Goal),
		},
		Character: &StoredTracker{
			Progress:    ptr(r.Character.Progress),
			Goal:        ptr(r.Character.Goal),
			SocialCheck: ptr(r.Character.SocialCheck),
		},
		Mindset: &StoredTracker{
			Is100: ptr(r.Mindset.Is100),
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}

// Progress returns progress and goal of a quantitative category.
func (r DailyRecord) Progress(c Category) (progress, goal float64, err error) {
	switch c {
	case CategoryAcademic:
		return r.Academic.Progress, r.Academic.Goal, nil
	case CategoryPhysical:
		return r.Physical.Progress, r.Physical.Goal, nil
	case CategoryCharacter:
		return r.Character.Progress, r.Character.Goal, nil
	case CategoryMindset:
		return 0, 0, ErrNotQuantitative
	default:
		return 0, 0, ErrUnknownCategory
	}
}

// Completion returns the percentage of goal reached for c, clamped to [0,100].
// A non-positive goal yields 0 rather than an error.
func Completion(r DailyRecord, c Category) float64 {
	if c == CategoryMindset {
		if r.Mindset.Is100 {
			return 100
		}
		return 0
	}

	progress, goal, err := r.Progress(c)
	if err != nil || !isFinite(goal) || goal <= 0 || !isFinite(progress) {
		return 0
	}

	pct := 100 * progress / goal
	return math.Max(0, math.Min(100, pct))
}

func (r *DailyRecord) tracker(c Category) (*float64, *float64, error) {
	switch c {
	case CategoryAcademic:
		return &r.Academic.Progress, &r.Academic.Goal, nil
	case CategoryPhysical:
		return &r.Physical.Progress, &r.Physical.Goal, nil
	case CategoryCharacter:
		return &r.Character.Progress, &r.Character.Goal, nil
	case CategoryMindset:
		return nil, nil, ErrNotQuantitative
	default:
		return nil, nil, ErrUnknownCategory
	}
}

func (r *DailyRecord) SetGoal(c Category, goal float64) error {
	_, g, err := r.tracker(c)
	if err != nil {
		return err
	}
	if !isFinite(goal) || goal <= 0 {
		return ErrInvalidGoal
	}

	*g = goal
	return nil
}

func (r *DailyRecord) AddProgress(c Category, amount float64) error {
	p, _, err := r.tracker(c)
	if err != nil {
		return err
	}
	if !isFinite(amount) || amount <= 0 {
		return ErrInvalidProgress
	}

	*p += amount
	return nil
}

func (r *DailyRecord) ToggleSocialCheck() bool {
	r.Character.SocialCheck = !r.Character.SocialCheck
	return r.Character.SocialCheck
}

func (r *DailyRecord) ToggleMindset() bool {
	r.Mindset.Is100 = !r.Mindset.Is100
	return r.Mindset.Is100
}

// Reset zeroes the day's progress and flags while keeping every goal.
func (r *DailyRecord) Reset() {
	r.Academic.Progress = 0
	r.Physical.Progress = 0
	r.Character.Progress = 0
	r.Character.SocialCheck = false
	r.Mindset.Is100 = false
}
