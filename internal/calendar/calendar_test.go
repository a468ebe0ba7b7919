package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/shopgen/internal/calendar"
	"github.com/andresuchdata/shopgen/internal/locale"
)

func Test_Generate_ContiguousDays(t *testing.T) {
	loc, err := locale.NewRegistry().Lookup("es_ES")
	require.NoError(t, err)

	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := calendar.Generate(loc, start, 730)

	require.Len(t, days, 730)
	assert.Equal(t, start, days[0].Date)
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].Date.AddDate(0, 0, 1), days[i].Date)
	}

	last := days[len(days)-1]
	assert.Equal(t, 2023, last.Year)
	assert.Equal(t, 12, last.Month)
	assert.Equal(t, 31, last.Day)
	assert.Equal(t, "Diciembre", last.MonthName)
	assert.Equal(t, 4, last.Quarter)
}

func Test_Generate_DerivedFields(t *testing.T) {
	loc, err := locale.NewRegistry().Lookup("en_US")
	require.NoError(t, err)

	// leap day, mid-afternoon input is truncated to the day
	days := calendar.Generate(loc, time.Date(2024, time.February, 28, 15, 30, 0, 0, time.UTC), 3)

	require.Len(t, days, 3)
	assert.Equal(t, 29, days[1].Day)
	assert.Equal(t, "February", days[1].MonthName)
	assert.Equal(t, 1, days[1].Quarter)
	assert.Equal(t, 3, days[2].Month)
	assert.Equal(t, "March", days[2].MonthName)
	assert.Equal(t, 0, days[0].Date.Hour())
}

func Test_Quarter(t *testing.T) {
	tests := []struct {
		month time.Month
		want  int
	}{
		{time.January, 1}, {time.March, 1},
		{time.April, 2}, {time.June, 2},
		{time.July, 3}, {time.September, 3},
		{time.October, 4}, {time.December, 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, calendar.Quarter(tc.month), tc.month.String())
	}
}

func Test_Generate_EmptyWindow(t *testing.T) {
	loc, err := locale.NewRegistry().Lookup("en_US")
	require.NoError(t, err)

	assert.Empty(t, calendar.Generate(loc, time.Now(), 0))
}
