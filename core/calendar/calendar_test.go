package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("01.09.2025", "31.12.2025")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 9, 1), r.Begin)
	assert.Equal(t, date(2025, 12, 31), r.End)
	assert.Equal(t, "01.09.2025..31.12.2025", r.String())
}

func TestParseRangeFormatError(t *testing.T) {
	cases := []struct {
		name, begin, end, field string
	}{
		{"bad begin", "2025-09-01", "07.09.2025", "begin"},
		{"bad end", "01.09.2025", "31.13.2025", "end"},
		{"single digit day", "1.09.2025", "07.09.2025", "begin"},
		{"empty", "", "07.09.2025", "begin"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseRange(c.begin, c.end)
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
			assert.Equal(t, c.field, fe.Field)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestWorkdaysFullWeek(t *testing.T) {
	// Monday 01.09.2025 to Sunday 07.09.2025.
	r := Range{Begin: date(2025, 9, 1), End: date(2025, 9, 7)}
	days := Workdays(r)
	require.Len(t, days, 5)
	assert.Equal(t, date(2025, 9, 1), days[0])
	assert.Equal(t, date(2025, 9, 5), days[4])
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i-1].Before(days[i]), "not ascending at %d", i)
	}
}

func TestWorkdaysAllWeekdays(t *testing.T) {
	r := Range{Begin: date(2025, 9, 2), End: date(2025, 9, 5)}
	assert.Len(t, Workdays(r), r.Days())
}

func TestWorkdaysWeekendOnly(t *testing.T) {
	r := Range{Begin: date(2025, 9, 6), End: date(2025, 9, 7)}
	assert.Empty(t, Workdays(r))
}

func TestWorkdaysInverted(t *testing.T) {
	r := Range{Begin: date(2025, 9, 7), End: date(2025, 9, 1)}
	assert.Empty(t, Workdays(r))
	assert.Equal(t, 0, r.Days())
	assert.True(t, NewWorkdaySet(r).Empty())
}

func TestWorkdaysRestartable(t *testing.T) {
	r := Range{Begin: date(2025, 12, 22), End: date(2026, 1, 9)}
	assert.Equal(t, Workdays(r), Workdays(r))
	assert.Len(t, Workdays(r), 15)
}

func TestIsWorkday(t *testing.T) {
	assert.True(t, IsWorkday(date(2025, 9, 3)))
	assert.False(t, IsWorkday(date(2025, 9, 6)))
	assert.False(t, IsWorkday(date(2025, 9, 7)))
}

func TestWorkdaySet(t *testing.T) {
	s := SetOf(date(2025, 9, 1), date(2025, 9, 1), date(2025, 9, 6), date(2025, 9, 2))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(date(2025, 9, 1).Add(13*time.Hour)))
	assert.False(t, s.Contains(date(2025, 9, 6)))

	days := s.Days()
	days[0] = date(2030, 1, 1)
	assert.True(t, s.Contains(date(2025, 9, 1)), "Days must return a copy")
}
