package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 540, true},
		{"9:30", 570, true},
		{"17:45:00", 1065, true},
		{"9am", 540, true},
		{"12:15 am", 15, true},
		{"12 pm", 720, true},
		{"1:05 PM", 785, true},
		{"24:00", 0, false},
		{"13pm", 0, false},
		{"9:5", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestNormalizeAndFormat(t *testing.T) {
	got, ok := Normalize("7:05 pm")
	assert.True(t, ok)
	assert.Equal(t, "19:05", got)
	assert.Equal(t, "", FormatClock(MinutesPerDay))
}

func TestTo12Hour(t *testing.T) {
	assert.Equal(t, "12:00 AM", To12Hour("00:00"))
	assert.Equal(t, "9:30 AM", To12Hour("09:30"))
	assert.Equal(t, "12:00 PM", To12Hour("12:00"))
	assert.Equal(t, "6:15 PM", To12Hour("18:15"))
	assert.Equal(t, "later", To12Hour("later"))
}

func TestCapitalizeDay(t *testing.T) {
	assert.Equal(t, "Monday", CapitalizeDay("monday"))
	assert.Equal(t, "Sunday", CapitalizeDay(" SUNDAY "))
	assert.Equal(t, "", CapitalizeDay(""))
}
