package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// UnknownDate is shown in place of a date that is missing or cannot be parsed.
const UnknownDate = "Data desconhecida"

const (
	displayDateLayout = "02/01/2006"
	inputDateLayout   = "2006-01-02"
	// isoMillisLayout matches the ISO strings the dashboard has always written.
	isoMillisLayout = "2006-01-02T15:04:05.000Z"
	// maxDateMillis bounds representable dates to ±100,000,000 days from the epoch.
	maxDateMillis = 8.64e15
)

// TimestampKind tags which shape a stored date value arrived in.
type TimestampKind int

const (
	TimestampAbsent TimestampKind = iota
	TimestampNative               // a native date, kept as epoch milliseconds
	TimestampStore                // a store timestamp exposing epoch seconds
	TimestampRaw                  // anything else, parsed as a date string
)

func (k TimestampKind) String() string {
	switch k {
	case TimestampNative:
		return "native"
	case TimestampStore:
		return "store"
	case TimestampRaw:
		return "raw"
	default:
		return "absent"
	}
}

// Timestamp is a date value as found in a user document. Documents written by
// different clients store dates as native timestamps, as {seconds, nanos}
// objects or as ISO strings, so the shape is kept alongside the value.
type Timestamp struct {
	Kind    TimestampKind
	Millis  int64
	Seconds int64
	Raw     string
}

func NativeTimestamp(t time.Time) Timestamp {
	return Timestamp{Kind: TimestampNative, Millis: t.UnixMilli()}
}

func StoreTimestamp(seconds int64) Timestamp {
	return Timestamp{Kind: TimestampStore, Seconds: seconds}
}

func RawTimestamp(raw string) Timestamp {
	if raw == "" {
		return Timestamp{}
	}
	return Timestamp{Kind: TimestampRaw, Raw: raw}
}

// ISOTimestamp renders t the way the dashboard writes dates and wraps it as a raw value.
func ISOTimestamp(t time.Time) Timestamp {
	return RawTimestamp(FormatISO(t))
}

// FormatISO renders t as a UTC ISO-8601 string with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillisLayout)
}

// TimestampFromValue detects the shape of a raw document value. The
// conversion-method shape (a decoded native timestamp) wins over the
// seconds-field shape, which wins over a generic parse.
func TimestampFromValue(v interface{}) Timestamp {
	switch val := v.(type) {
	case nil:
		return Timestamp{}
	case Timestamp:
		return val
	case time.Time:
		if val.IsZero() {
			return Timestamp{}
		}
		return NativeTimestamp(val)
	case *time.Time:
		if val == nil {
			return Timestamp{}
		}
		return TimestampFromValue(*val)
	case map[string]interface{}:
		for _, key := range []string{"seconds", "_seconds"} {
			if raw, ok := val[key]; ok {
				if secs, err := cast.ToInt64E(raw); err == nil {
					return StoreTimestamp(secs)
				}
			}
		}
		return Timestamp{Kind: TimestampRaw, Raw: fmt.Sprint(val)}
	case string:
		return RawTimestamp(val)
	case int64:
		return millisTimestamp(float64(val), fmt.Sprint(val))
	case int:
		return millisTimestamp(float64(val), fmt.Sprint(val))
	case float64:
		return millisTimestamp(val, fmt.Sprint(val))
	default:
		return Timestamp{Kind: TimestampRaw, Raw: fmt.Sprint(val)}
	}
}

// millisTimestamp keeps an epoch-millisecond number as a native value, or as
// an unparseable raw one when it falls outside the representable range.
func millisTimestamp(ms float64, raw string) Timestamp {
	if math.IsNaN(ms) || math.Abs(ms) > maxDateMillis {
		return Timestamp{Kind: TimestampRaw, Raw: raw}
	}
	return Timestamp{Kind: TimestampNative, Millis: int64(ms)}
}

func inDateRange(t time.Time) bool {
	ms := t.UnixMilli()
	return ms >= -maxDateMillis && ms <= maxDateMillis
}

// IsZero reports whether no date value is present.
func (ts Timestamp) IsZero() bool {
	return ts.Kind == TimestampAbsent
}

// Time converts the value to a time. ok is false when the value is absent or
// cannot be interpreted as a date.
func (ts Timestamp) Time() (t time.Time, ok bool) {
	switch ts.Kind {
	case TimestampNative:
		if math.Abs(float64(ts.Millis)) > maxDateMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(ts.Millis), true
	case TimestampStore:
		if ts.Seconds == 0 || math.Abs(float64(ts.Seconds)) > maxDateMillis/1000 {
			return time.Time{}, false
		}
		return time.Unix(ts.Seconds, 0), true
	case TimestampRaw:
		parsed, err := cast.StringToDate(strings.TrimSpace(ts.Raw))
		if err != nil || !inDateRange(parsed) {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// UnixMillis returns a sortable epoch-millisecond value, 0 when the value is
// absent or unparseable.
func (ts Timestamp) UnixMillis() int64 {
	t, ok := ts.Time()
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// FormatDate renders the value as dd/mm/yyyy in local time.
func (ts Timestamp) FormatDate() string {
	t, ok := ts.Time()
	if !ok {
		return UnknownDate
	}
	return t.In(time.Local).Format(displayDateLayout)
}

// FormatDateInput renders the value as yyyy-mm-dd for edit forms, empty on failure.
func (ts Timestamp) FormatDateInput() string {
	t, ok := ts.Time()
	if !ok {
		return ""
	}
	return t.UTC().Format(inputDateLayout)
}

// StoreValue returns what should be written back to the document store.
func (ts Timestamp) StoreValue() interface{} {
	switch ts.Kind {
	case TimestampNative:
		return time.UnixMilli(ts.Millis).UTC()
	case TimestampStore:
		return time.Unix(ts.Seconds, 0).UTC()
	case TimestampRaw:
		return ts.Raw
	default:
		return nil
	}
}

type timestampJSON struct {
	Kind    string `json:"kind"`
	Millis  int64  `json:"millis,omitempty"`
	Seconds int64  `json:"seconds,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(timestampJSON{Kind: ts.Kind.String(), Millis: ts.Millis, Seconds: ts.Seconds, Raw: ts.Raw})
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ts = Timestamp{}
		return nil
	}
	var aux timestampJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	switch aux.Kind {
	case "native":
		*ts = Timestamp{Kind: TimestampNative, Millis: aux.Millis}
	case "store":
		*ts = Timestamp{Kind: TimestampStore, Seconds: aux.Seconds}
	case "raw":
		*ts = Timestamp{Kind: TimestampRaw, Raw: aux.Raw}
	default:
		*ts = Timestamp{}
	}
	return nil
}
