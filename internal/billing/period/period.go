package period

import (
	"fmt"
	"strings"
	"time"
)

// Cadence is the billing frequency stored on a customer.
type Cadence string

const (
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

const dateLayout = "01/02/2006"

// Known reports whether the cadence has calendar period semantics.
func (c Cadence) Known() bool {
	switch c {
	case CadenceMonthly, CadenceQuarterly, CadenceYearly:
		return true
	default:
		return false
	}
}

// Normalize lowercases and trims a stored cadence value.
func Normalize(raw string) Cadence {
	return Cadence(strings.ToLower(strings.TrimSpace(raw)))
}

// Period is the billing interval an invoice covers.
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// DatesString renders the range as "MM/DD/YYYY - MM/DD/YYYY".
func (p Period) DatesString() string {
	return FormatRange(p.Start, p.End)
}

// For resolves the label and range for date under cadence.
func For(date time.Time, cadence Cadence) Period {
	start, end := Dates(date, cadence)
	return Period{
		Label: Label(date, cadence),
		Start: start,
		End:   end,
	}
}

// Dates returns the first and last day of the period containing date.
// Unknown cadences collapse to the date itself.
func Dates(date time.Time, cadence Cadence) (time.Time, time.Time) {
	d := truncate(date)
	switch cadence {
	case CadenceMonthly:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		return start, start.AddDate(0, 1, -1)
	case CadenceQuarterly:
		startMonth := time.Month(3*(quarterOf(d)-1) + 1)
		start := time.Date(d.Year(), startMonth, 1, 0, 0, 0, 0, d.Location())
		return start, start.AddDate(0, 3, -1)
	case CadenceYearly:
		start := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
		end := time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
		return start, end
	default:
		return d, d
	}
}

// Label returns the human period identifier used as the invoice dedup key.
func Label(date time.Time, cadence Cadence) string {
	d := truncate(date)
	switch cadence {
	case CadenceMonthly:
		return d.Format("January 2006")
	case CadenceQuarterly:
		q := quarterOf(d)
		return fmt.Sprintf("%d%s quarter %d", q, ordinalSuffix(q), d.Year())
	case CadenceYearly:
		return fmt.Sprintf("%d", d.Year())
	default:
		return d.Format(time.DateOnly)
	}
}

// Next returns the next bill date after date. ok is false when the cadence
// has no advancement rule and the date is returned unchanged.
func Next(date time.Time, cadence Cadence) (next time.Time, ok bool) {
	d := truncate(date)
	switch cadence {
	case CadenceMonthly:
		return time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location()), true
	case CadenceQuarterly:
		nextMonth := time.Month(3*quarterOf(d) + 1)
		return time.Date(d.Year(), nextMonth, 1, 0, 0, 0, 0, d.Location()), true
	case CadenceYearly:
		day := d.Day()
		if d.Month() == time.February && day == 29 {
			day = 28
		}
		return time.Date(d.Year()+1, d.Month(), day, 0, 0, 0, 0, d.Location()), true
	default:
		return d, false
	}
}

// FormatDate renders a date as MM/DD/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func FormatRange(start, end time.Time) string {
	return FormatDate(start) + " - " + FormatDate(end)
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func ordinalSuffix(q int) string {
	switch q {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
