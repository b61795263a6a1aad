package cim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Errors
var (
	ErrDateTimeLength   = errors.New("datetime string must be exactly 25 characters")
	ErrDateTimeFormat   = errors.New("malformed datetime string")
	ErrIntervalNegative = errors.New("interval must not be negative")
	ErrDateTimeVariant  = errors.New("operation not defined for this datetime variant")
)

// wireLen is the fixed length of the CIM datetime wire form.
const wireLen = 25

// usecPerDay etc. are interval field sizes in microseconds.
const (
	usecPerSecond int64 = 1_000_000
	usecPerMinute       = 60 * usecPerSecond
	usecPerHour         = 60 * usecPerMinute
	usecPerDay          = 24 * usecPerHour
)

// DateTime is a CIM datetime: either a point in time with microsecond
// precision and an explicit UTC offset in minutes, or a non-negative
// interval. The wire form is exactly 25 characters:
//
//	timestamp  yyyymmddhhmmss.mmmmmmsutc   s is '+' or '-', utc is the
//	                                       offset from UTC in minutes
//	interval   ddddddddhhmmss.mmmmmm:000   trailing ":000" marks interval
//
// The zero DateTime is the timestamp 00010101000000.000000+000.
type DateTime struct {
	interval bool
	t        time.Time // timestamp variant, µs precision, zone = offset
	usec     int64     // interval variant, total microseconds
}

// Timestamp returns a point-in-time DateTime. The time is truncated to
// microsecond precision; the UTC offset is taken from t's location and
// must be a whole number of minutes.
func Timestamp(t time.Time) (DateTime, error) {
	_, offsetSec := t.Zone()
	if offsetSec%60 != 0 {
		return DateTime{}, fmt.Errorf("%w: UTC offset %ds is not whole minutes", ErrDateTimeFormat, offsetSec)
	}
	return DateTime{t: t.Truncate(time.Microsecond)}, nil
}

// Interval returns an interval DateTime from a non-negative duration,
// truncated to microsecond precision.
func Interval(d time.Duration) (DateTime, error) {
	if d < 0 {
		return DateTime{}, ErrIntervalNegative
	}
	return DateTime{interval: true, usec: int64(d / time.Microsecond)}, nil
}

// IsInterval reports whether the value is the interval variant.
func (dt DateTime) IsInterval() bool { return dt.interval }

// Time returns the point in time for the timestamp variant, including its
// UTC offset as the location. For intervals it returns the zero time.
func (dt DateTime) Time() time.Time {
	if dt.interval {
		return time.Time{}
	}
	return dt.t
}

// Duration returns the interval as a time.Duration. For timestamps it
// returns zero. Intervals longer than ~292 years saturate.
func (dt DateTime) Duration() time.Duration {
	if !dt.interval {
		return 0
	}
	if dt.usec > int64(1<<63-1)/1000 {
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(dt.usec) * time.Microsecond
}

// Equal reports equality: same variant, and for timestamps the same
// instant, for intervals the same length.
func (dt DateTime) Equal(other DateTime) bool {
	if dt.interval != other.interval {
		return false
	}
	if dt.interval {
		return dt.usec == other.usec
	}
	return dt.t.Equal(other.t)
}

// Add adds an interval to a datetime. interval + interval = interval,
// timestamp + interval = timestamp. Adding a timestamp is rejected.
func (dt DateTime) Add(other DateTime) (DateTime, error) {
	if !other.interval {
		return DateTime{}, fmt.Errorf("%w: cannot add a timestamp", ErrDateTimeVariant)
	}
	if dt.interval {
		return DateTime{interval: true, usec: dt.usec + other.usec}, nil
	}
	return DateTime{t: dt.t.Add(time.Duration(other.usec) * time.Microsecond)}, nil
}

// Sub subtracts: interval - interval = interval, timestamp - interval =
// timestamp, timestamp - timestamp = interval. A negative result is
// rejected.
func (dt DateTime) Sub(other DateTime) (DateTime, error) {
	switch {
	case dt.interval && other.interval:
		if dt.usec < other.usec {
			return DateTime{}, ErrIntervalNegative
		}
		return DateTime{interval: true, usec: dt.usec - other.usec}, nil
	case !dt.interval && other.interval:
		return DateTime{t: dt.t.Add(-time.Duration(other.usec) * time.Microsecond)}, nil
	case !dt.interval && !other.interval:
		d := dt.t.Sub(other.t)
		if d < 0 {
			return DateTime{}, ErrIntervalNegative
		}
		return Interval(d)
	}
	return DateTime{}, fmt.Errorf("%w: cannot subtract a timestamp from an interval", ErrDateTimeVariant)
}

// String renders the 25-character wire form.
func (dt DateTime) String() string {
	var b strings.Builder
	b.Grow(wireLen)
	if dt.interval {
		usec := dt.usec
		days := usec / usecPerDay
		usec -= days * usecPerDay
		hours := usec / usecPerHour
		usec -= hours * usecPerHour
		mins := usec / usecPerMinute
		usec -= mins * usecPerMinute
		secs := usec / usecPerSecond
		usec -= secs * usecPerSecond

		writePadded(&b, days, 8)
		writePadded(&b, hours, 2)
		writePadded(&b, mins, 2)
		writePadded(&b, secs, 2)
		b.WriteByte('.')
		writePadded(&b, usec, 6)
		b.WriteString(":000")
		return b.String()
	}

	t := dt.t
	_, offsetSec := t.Zone()
	offsetMin := int64(offsetSec / 60)
	sign := byte('+')
	if offsetMin < 0 {
		sign = '-'
		offsetMin = -offsetMin
	}
	writePadded(&b, int64(t.Year()), 4)
	writePadded(&b, int64(t.Month()), 2)
	writePadded(&b, int64(t.Day()), 2)
	writePadded(&b, int64(t.Hour()), 2)
	writePadded(&b, int64(t.Minute()), 2)
	writePadded(&b, int64(t.Second()), 2)
	b.WriteByte('.')
	writePadded(&b, int64(t.Nanosecond()/1000), 6)
	b.WriteByte(sign)
	writePadded(&b, offsetMin, 3)
	return b.String()
}

func writePadded(b *strings.Builder, v int64, width int) {
	s := strconv.FormatInt(v, 10)
	for i := len(s); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}

// ParseDateTime parses the 25-character wire form. Any string whose
// length is not exactly 25 or whose shape violates the grammar is
// rejected.
func ParseDateTime(s string) (DateTime, error) {
	if len(s) != wireLen {
		return DateTime{}, fmt.Errorf("%w: got %d", ErrDateTimeLength, len(s))
	}
	if s[14] != '.' {
		return DateTime{}, fmt.Errorf("%w: missing '.' at position 14", ErrDateTimeFormat)
	}
	for _, pos := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 15, 16, 17, 18, 19, 20, 22, 23, 24} {
		if s[pos] < '0' || s[pos] > '9' {
			return DateTime{}, fmt.Errorf("%w: non-digit at position %d", ErrDateTimeFormat, pos)
		}
	}

	usec, _ := strconv.ParseInt(s[15:21], 10, 64)

	switch s[21] {
	case ':':
		if s[22:] != "000" {
			return DateTime{}, fmt.Errorf("%w: interval must end in \":000\"", ErrDateTimeFormat)
		}
		days, _ := strconv.ParseInt(s[0:8], 10, 64)
		hours, _ := strconv.ParseInt(s[8:10], 10, 64)
		mins, _ := strconv.ParseInt(s[10:12], 10, 64)
		secs, _ := strconv.ParseInt(s[12:14], 10, 64)
		if hours > 23 || mins > 59 || secs > 59 {
			return DateTime{}, fmt.Errorf("%w: interval field out of range", ErrDateTimeFormat)
		}
		total := days*usecPerDay + hours*usecPerHour + mins*usecPerMinute + secs*usecPerSecond + usec
		return DateTime{interval: true, usec: total}, nil

	case '+', '-':
		year, _ := strconv.Atoi(s[0:4])
		month, _ := strconv.Atoi(s[4:6])
		day, _ := strconv.Atoi(s[6:8])
		hour, _ := strconv.Atoi(s[8:10])
		minute, _ := strconv.Atoi(s[10:12])
		second, _ := strconv.Atoi(s[12:14])
		offsetMin, _ := strconv.Atoi(s[22:])
		if month < 1 || month > 12 || day < 1 || day > 31 ||
			hour > 23 || minute > 59 || second > 59 {
			return DateTime{}, fmt.Errorf("%w: timestamp field out of range", ErrDateTimeFormat)
		}
		if s[21] == '-' {
			offsetMin = -offsetMin
		}
		loc := time.FixedZone("", offsetMin*60)
		t := time.Date(year, time.Month(month), day, hour, minute, second, int(usec)*1000, loc)
		return DateTime{t: t}, nil
	}
	return DateTime{}, fmt.Errorf("%w: position 21 must be ':', '+' or '-'", ErrDateTimeFormat)
}
