package cim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		interval  bool
		wantError bool
	}{
		{
			name: "timestamp with positive offset",
			in:   "20051015123456.123456+120",
		},
		{
			name: "timestamp with negative offset",
			in:   "19981125133015.000000-300",
		},
		{
			name: "timestamp at UTC",
			in:   "20260824000000.000000+000",
		},
		{
			name:     "interval",
			in:       "00000183132542.234567:000",
			interval: true,
		},
		{
			name:     "zero interval",
			in:       "00000000000000.000000:000",
			interval: true,
		},
		{
			name:      "too short",
			in:        "20051015123456.123456+12",
			wantError: true,
		},
		{
			name:      "too long",
			in:        "20051015123456.123456+1200",
			wantError: true,
		},
		{
			name:      "missing dot",
			in:        "20051015123456x123456+120",
			wantError: true,
		},
		{
			name:      "bad separator at 21",
			in:        "20051015123456.123456x120",
			wantError: true,
		},
		{
			name:      "interval tail not 000",
			in:        "00000183132542.234567:001",
			wantError: true,
		},
		{
			name:      "non-digit in offset",
			in:        "20051015123456.123456+1a0",
			wantError: true,
		},
		{
			name:      "month out of range",
			in:        "20051315123456.123456+000",
			wantError: true,
		},
		{
			name:      "interval hours out of range",
			in:        "00000001240000.000000:000",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := ParseDateTime(tt.in)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.interval, dt.IsInterval())
			// parse-then-format is the identity on the wire form
			assert.Equal(t, tt.in, dt.String())
		})
	}
}

func TestParseDateTimeFormatIdentity(t *testing.T) {
	// property: for all valid wire strings, parse-then-format is identity
	rapid.Check(t, func(t *rapid.T) {
		var s string
		if rapid.Bool().Draw(t, "interval") {
			dt, err := Interval(time.Duration(rapid.Int64Range(0, 1<<50).Draw(t, "usec")) * time.Microsecond)
			if err != nil {
				t.Fatal(err)
			}
			s = dt.String()
		} else {
			offset := rapid.IntRange(-720, 720).Draw(t, "offset")
			loc := time.FixedZone("", offset*60)
			ts := time.Date(
				rapid.IntRange(1, 9999).Draw(t, "year"),
				time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
				rapid.IntRange(1, 28).Draw(t, "day"),
				rapid.IntRange(0, 23).Draw(t, "hour"),
				rapid.IntRange(0, 59).Draw(t, "min"),
				rapid.IntRange(0, 59).Draw(t, "sec"),
				rapid.IntRange(0, 999999).Draw(t, "usec")*1000,
				loc,
			)
			dt, err := Timestamp(ts)
			if err != nil {
				t.Fatal(err)
			}
			s = dt.String()
		}
		if len(s) != 25 {
			t.Fatalf("wire form %q has length %d", s, len(s))
		}
		parsed, err := ParseDateTime(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if parsed.String() != s {
			t.Fatalf("round trip changed %q to %q", s, parsed.String())
		}
	})
}

func TestDateTimeArithmetic(t *testing.T) {
	ts := func(s string) DateTime {
		dt, err := ParseDateTime(s)
		if err != nil {
			t.Fatal(err)
		}
		return dt
	}

	t.Run("interval plus interval", func(t *testing.T) {
		sum, err := ts("00000001000000.000000:000").Add(ts("00000002030000.000000:000"))
		require.NoError(t, err)
		assert.Equal(t, "00000003030000.000000:000", sum.String())
	})

	t.Run("timestamp plus interval", func(t *testing.T) {
		sum, err := ts("20051015123456.000000+060").Add(ts("00000001000104.000000:000"))
		require.NoError(t, err)
		assert.Equal(t, "20051016123600.000000+060", sum.String())
	})

	t.Run("timestamp minus timestamp", func(t *testing.T) {
		diff, err := ts("20051016123456.000000+000").Sub(ts("20051015123456.000000+000"))
		require.NoError(t, err)
		assert.True(t, diff.IsInterval())
		assert.Equal(t, "00000001000000.000000:000", diff.String())
	})

	t.Run("timestamp minus interval", func(t *testing.T) {
		diff, err := ts("20051016123456.000000+000").Sub(ts("00000001000000.000000:000"))
		require.NoError(t, err)
		assert.False(t, diff.IsInterval())
		assert.Equal(t, "20051015123456.000000+000", diff.String())
	})

	t.Run("negative interval rejected", func(t *testing.T) {
		_, err := ts("00000001000000.000000:000").Sub(ts("00000002000000.000000:000"))
		assert.ErrorIs(t, err, ErrIntervalNegative)
	})

	t.Run("adding a timestamp rejected", func(t *testing.T) {
		_, err := ts("20051015123456.000000+000").Add(ts("20051015123456.000000+000"))
		assert.ErrorIs(t, err, ErrDateTimeVariant)
	})

	t.Run("interval minus timestamp rejected", func(t *testing.T) {
		_, err := ts("00000001000000.000000:000").Sub(ts("20051015123456.000000+000"))
		assert.ErrorIs(t, err, ErrDateTimeVariant)
	})
}

func TestDateTimeEqual(t *testing.T) {
	a, err := ParseDateTime("20051015123456.000000+060")
	require.NoError(t, err)
	// same instant expressed at UTC
	b, err := ParseDateTime("20051015113456.000000+000")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	i, err := ParseDateTime("00000000000000.000000:000")
	require.NoError(t, err)
	assert.False(t, a.Equal(i))
}
