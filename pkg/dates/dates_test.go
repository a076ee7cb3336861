package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	parsed, ok := Parse("2021-03-15")
	require.True(t, ok)
	assert.Equal(t, 2021, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 15, parsed.Day())
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestParseDefensive(t *testing.T) {
	for _, raw := range []string{"", "  ", "not-a-date", "2021-13-40", "15/03/2021"} {
		_, ok := Parse(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
		assert.Nil(t, ParsePtr(raw))
	}
}

func TestMonthsBetween(t *testing.T) {
	day := func(raw string) time.Time {
		parsed, ok := Parse(raw)
		require.True(t, ok)
		return parsed
	}

	assert.Equal(t, 0, MonthsBetween(day("2021-01-10"), day("2021-02-09")))
	assert.Equal(t, 1, MonthsBetween(day("2021-01-10"), day("2021-02-10")))
	assert.Equal(t, 6, MonthsBetween(day("2020-09-01"), day("2021-03-01")))
	assert.Equal(t, 11, MonthsBetween(day("2020-09-15"), day("2021-09-01")))
}

func TestDaysBetween(t *testing.T) {
	from, _ := Parse("2021-01-01")
	to, _ := Parse("2021-06-01")
	assert.Equal(t, 151, DaysBetween(from, to))
	assert.Equal(t, -151, DaysBetween(to, from))
}

func TestOverlapsInclusive(t *testing.T) {
	a1, _ := Parse("2021-01-01")
	a2, _ := Parse("2021-03-01")
	b1, _ := Parse("2021-03-01")
	b2, _ := Parse("2021-05-01")
	c1, _ := Parse("2021-03-02")

	assert.True(t, Overlaps(a1, a2, b1, b2))
	assert.False(t, Overlaps(a1, a2, c1, b2))
}

func TestFormatHuman(t *testing.T) {
	d, _ := Parse("2021-03-05")
	assert.Equal(t, "05/03/2021", FormatHuman(&d))
	assert.Equal(t, "…", FormatHuman(nil))
}
