package progression

import (
	"strconv"
	"strings"
	"unicode"
)

// Reps is an exercise target: either a count or a duration label such as
// "60s". Exactly one of Count or Label is meaningful; Label wins when set.
type Reps struct {
	Count int
	Label string
}

// Count returns a numeric repetition target.
func Count(n int) Reps { return Reps{Count: n} }

// Duration returns a label target, e.g. Duration("60s").
func Duration(label string) Reps { return Reps{Label: label} }

// IsLabel returns true for duration-style targets.
func (r Reps) IsLabel() bool { return r.Label != "" }

// String renders the target for display.
func (r Reps) String() string {
	if r.IsLabel() {
		return r.Label
	}
	return strconv.Itoa(r.Count)
}

// Value returns the numeric weight of the target used by rep buckets: the
// count, or the leading integer of a label ("60s" is 60). Labels without a
// leading integer count as 0.
func (r Reps) Value() int {
	if !r.IsLabel() {
		if r.Count < 0 {
			return 0
		}
		return r.Count
	}
	label := strings.TrimSpace(r.Label)
	end := strings.IndexFunc(label, func(c rune) bool { return !unicode.IsDigit(c) })
	if end == -1 {
		end = len(label)
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return 0
	}
	return n
}

// MarshalJSON encodes a count as a number and a label as a string.
func (r Reps) MarshalJSON() ([]byte, error) {
	if r.IsLabel() {
		return []byte(strconv.Quote(r.Label)), nil
	}
	return []byte(strconv.Itoa(r.Count)), nil
}

// UnmarshalJSON accepts a number or a string. Numeric strings stay labels so
// that the stored form round-trips unchanged.
func (r *Reps) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*r = Reps{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		label, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		*r = Reps{Label: label}
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*r = Reps{Count: int(f)}
	return nil
}

// ExerciseItem is one line of a session routine.
type ExerciseItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Reps      Reps   `json:"reps"`
	Completed bool   `json:"completed"`
}

// DefaultRoutine returns the editable template for a session: four fixed
// exercises plus Glute Bridges on even session numbers and Supermans on odd.
func DefaultRoutine(sessionNumber int) []ExerciseItem {
	extra := "Glute Bridges"
	if sessionNumber%2 != 0 {
		extra = "Supermans"
	}
	return []ExerciseItem{
		{ID: "1", Name: "Pushups", Reps: Count(10)},
		{ID: "2", Name: "Situps", Reps: Count(10)},
		{ID: "3", Name: "Squats", Reps: Count(10)},
		{ID: "4", Name: "Plank", Reps: Duration("60s")},
		{ID: "5", Name: extra, Reps: Count(10)},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MUSCLE BUCKETS
// ══════════════════════════════════════════════════════════════════════════════

// Bucket is a lifetime rep counter category.
type Bucket string

const (
	BucketPush  Bucket = "push"
	BucketPull  Bucket = "pull"
	BucketCore  Bucket = "core"
	BucketLegs  Bucket = "legs"
	BucketOther Bucket = ""
)

var bucketKeywords = []struct {
	bucket   Bucket
	keywords []string
}{
	{BucketPush, []string{"pushup", "push-up", "push up", "press", "dip"}},
	{BucketPull, []string{"pullup", "pull-up", "pull", "row", "superman"}},
	{BucketLegs, []string{"squat", "lunge", "leg", "glute", "calf"}},
	{BucketCore, []string{"situp", "sit-up", "sit up", "plank", "crunch"}},
}

// ClassifyExercise maps an exercise name to its bucket by keyword. Names that
// match nothing return BucketOther and are not counted.
func ClassifyExercise(name string) Bucket {
	lower := strings.ToLower(name)
	for _, entry := range bucketKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.bucket
			}
		}
	}
	return BucketOther
}
