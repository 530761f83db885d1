package scheduling

import "time"

const (
	// BookingHorizonDays is how many calendar days after today are offered.
	BookingHorizonDays = 14

	dateLayout    = "2006-01-02"
	displayLayout = "Mon, Jan 2"
)

// DateOption is one bookable day in step one of the wizard.
type DateOption struct {
	Date       string    `json:"date"`
	Display    string    `json:"display"`
	IsEarliest bool      `json:"is_earliest"`
	Day        time.Time `json:"-"`
}

// AvailableDates returns the days after today within the booking horizon,
// Sundays excluded. The first entry is flagged as the earliest available.
func AvailableDates(today time.Time) []DateOption {
	y, m, d := today.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	out := make([]DateOption, 0, BookingHorizonDays)
	for i := 1; i <= BookingHorizonDays; i++ {
		day := base.AddDate(0, 0, i)
		if day.Weekday() == time.Sunday {
			continue
		}
		out = append(out, DateOption{
			Date:       day.Format(dateLayout),
			Display:    day.Format(displayLayout),
			IsEarliest: len(out) == 0,
			Day:        day,
		})
	}
	return out
}

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

func findDate(options []DateOption, date string) (DateOption, bool) {
	for _, opt := range options {
		if opt.Date == date {
			return opt, true
		}
	}
	return DateOption{}, false
}
