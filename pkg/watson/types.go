package watson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EpochTime is a timestamp carried on the wire as milliseconds since the Unix epoch.
type EpochTime struct {
	time.Time
}

// NewEpochTime creates an EpochTime from milliseconds since the epoch.
func NewEpochTime(millis int64) EpochTime {
	return EpochTime{Time: time.UnixMilli(millis).UTC()}
}

// Millis returns the timestamp as milliseconds since the epoch.
func (t EpochTime) Millis() int64 {
	return t.UnixMilli()
}

// MarshalJSON encodes the timestamp as an integer.
func (t EpochTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// UnmarshalJSON accepts an integer, a numeric string or null.
func (t *EpochTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}

		return nil
	}

	data = bytes.Trim(data, `"`)

	millis, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parsing epoch time %q: %w", data, err)
	}

	*t = NewEpochTime(int64(millis))

	return nil
}

// TextSpan is a character range carried on the wire as the array [start, end].
type TextSpan struct {
	Start int
	End   int
}

// Len returns the number of characters covered.
func (s TextSpan) Len() int {
	return s.End - s.Start
}

// MarshalJSON encodes the span as a two element array.
func (s TextSpan) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

// UnmarshalJSON decodes a two element array.
func (s *TextSpan) UnmarshalJSON(data []byte) error {
	var pair []int

	err := json.Unmarshal(data, &pair)
	if err != nil {
		return fmt.Errorf("parsing text span: %w", err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("parsing text span: %w", InvalidArgument("span", fmt.Sprintf("has %d elements, want 2", len(pair))))
	}

	s.Start, s.End = pair[0], pair[1]

	return nil
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// CloneStrings copies a slice, keeping nil as nil.
func CloneStrings(values []string) []string {
	if values == nil {
		return nil
	}

	return append([]string(nil), values...)
}
