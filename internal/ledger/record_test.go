package ledger

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeClock(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9:5", "09:05"},
		{"09:05", "09:05"},
		{"0:0", "00:00"},
		{"23:59", "23:59"},
		{"7:30", "07:30"},
	}
	canonical := regexp.MustCompile(`^\d{2}:\d{2}$`)
	for _, tc := range cases {
		got, err := NormalizeClock(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
		require.Regexp(t, canonical, got)

		// Normalization is idempotent on its own output.
		again, err := NormalizeClock(got)
		require.NoError(t, err)
		require.Equal(t, got, again)
	}
}

func TestNormalizeClockRejects(t *testing.T) {
	for _, in := range []string{"", "9", "9:", ":5", "24:00", "12:60", "9h30", "123:45", "12:345", "09:05:00", " 9:05", "9:05 "} {
		_, err := NormalizeClock(in)
		require.Error(t, err, "input %q should be rejected", in)
	}
}

func TestNormalizeDay(t *testing.T) {
	got, err := NormalizeDay("2024-01-15")
	require.NoError(t, err)
	require.Equal(t, "2024-01-15", got)

	for _, in := range []string{"", "2024-13-01", "2024-01-32", "15/01/2024", "yesterday"} {
		_, err := NormalizeDay(in)
		require.Error(t, err, "input %q should be rejected", in)
	}
}

func TestCategories(t *testing.T) {
	require.True(t, ValidCategory("travail"))
	require.True(t, ValidCategory("astreinte"))
	require.False(t, ValidCategory(""))
	require.False(t, ValidCategory("vacances"))
	require.Equal(t, "Congé", CategoryLabel("conge"))
	require.Equal(t, "", CategoryLabel("vacances"))
}
