package calendar

import (
	"time"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/locale"
)

// Generate returns days contiguous calendar days beginning at start.
func Generate(loc *locale.Locale, start time.Time, days int) []domain.CalendarDay {
	if days <= 0 {
		return nil
	}

	start = Midnight(start)
	out := make([]domain.CalendarDay, days)
	for i := range out {
		d := start.AddDate(0, 0, i)
		out[i] = domain.CalendarDay{
			Date:      d,
			Year:      d.Year(),
			Month:     int(d.Month()),
			Day:       d.Day(),
			MonthName: loc.MonthName(int(d.Month())),
			Quarter:   Quarter(d.Month()),
		}
	}
	return out
}

// Quarter maps a month to its calendar quarter (1-4).
func Quarter(m time.Month) int {
	return (int(m)-1)/3 + 1
}

// Midnight truncates t to the start of its day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
