package ledger

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Record represents one pointage row. Owner is a denormalized username
// string; rows survive deletion of the account that wrote them. Records are
// never edited in place, corrections are new rows.
type Record struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"nom"`
	Day       string    `json:"jour"`
	Arrival   string    `json:"arrivee"`
	Departure string    `json:"depart,omitempty"`
	Category  string    `json:"service,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DayStat is a per-day record count for the admin overview.
type DayStat struct {
	Day   string `json:"jour"`
	Count int64  `json:"count"`
}

var ErrNotFound = errors.New("record not found")

// ValidationError is a rejected write with a field-specific reason. The
// operation leaves no partial state behind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Category codes with their display labels. An empty category is valid and
// means unclassified.
var categoryLabels = map[string]string{
	"travail":     "Travail",
	"recup":       "Récupération",
	"deplacement": "Déplacement",
	"conge":       "Congé",
	"maladie":     "Maladie",
	"formation":   "Formation",
	"astreinte":   "Astreinte",
	"ferie":       "Férié",
	"autre":       "Autre",
}

// ValidCategory reports whether code belongs to the recognized set.
func ValidCategory(code string) bool {
	_, ok := categoryLabels[code]
	return ok
}

// CategoryLabel resolves a category code to its label, empty when the code
// is empty or unknown.
func CategoryLabel(code string) string {
	return categoryLabels[code]
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)

// NormalizeClock canonicalizes a wall-clock input to zero-padded 24-hour
// "HH:MM". Anything outside `\d{1,2}:\d{1,2}` or the 0-23/0-59 ranges is
// rejected rather than passed through. Idempotent on its own output.
func NormalizeClock(input string) (string, error) {
	m := clockPattern.FindStringSubmatch(input)
	if m == nil {
		return "", fmt.Errorf("not a HH:MM time: %q", input)
	}
	var hour, minute int
	fmt.Sscanf(m[1], "%d", &hour)
	fmt.Sscanf(m[2], "%d", &minute)
	if hour > 23 {
		return "", fmt.Errorf("hour out of range: %d", hour)
	}
	if minute > 59 {
		return "", fmt.Errorf("minute out of range: %d", minute)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// NormalizeDay validates an ISO-8601 calendar date.
func NormalizeDay(input string) (string, error) {
	t, err := time.Parse("2006-01-02", input)
	if err != nil {
		return "", fmt.Errorf("not a YYYY-MM-DD date: %q", input)
	}
	return t.Format("2006-01-02"), nil
}
