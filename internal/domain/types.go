package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// encodeJSONColumn and decodeJSONColumn are the only places JSON columns are
// converted to and from their stored form.
func encodeJSONColumn(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

func decodeJSONColumn(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("decode json column: unsupported type %T", src)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

// JobIDs is the set of job ids bound to an assignment, stored as a JSON array.
type JobIDs []int64

// NewJobIDs returns the ids with duplicates removed, keeping first-seen order.
func NewJobIDs(ids ...int64) JobIDs {
	out := make(JobIDs, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ParseJobIDs accepts both a JSON array ("[7,8]") and the legacy
// comma separated form ("7,8").
func ParseJobIDs(s string) (JobIDs, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return JobIDs{}, nil
	}
	var ids []int64
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return nil, fmt.Errorf("invalid job ids %q: %w", s, err)
		}
		return NewJobIDs(ids...), nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid job id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return NewJobIDs(ids...), nil
}

// Contains reports whether id is in the set
func (j JobIDs) Contains(id int64) bool {
	for _, v := range j {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the set with id removed
func (j JobIDs) Without(id int64) JobIDs {
	out := make(JobIDs, 0, len(j))
	for _, v := range j {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// SameSet compares two sets ignoring order
func (j JobIDs) SameSet(other JobIDs) bool {
	a, b := NewJobIDs(j...), NewJobIDs(other...)
	if len(a) != len(b) {
		return false
	}
	sort.Slice(a, func(x, y int) bool { return a[x] < a[y] })
	sort.Slice(b, func(x, y int) bool { return b[x] < b[y] })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the stored form, e.g. "[7,8]"
func (j JobIDs) String() string {
	v, _ := j.Value()
	return v.(string)
}

// Value implements driver.Valuer
func (j JobIDs) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	return encodeJSONColumn([]int64(j))
}

// Scan implements sql.Scanner
func (j *JobIDs) Scan(src any) error {
	var ids []int64
	if err := decodeJSONColumn(src, &ids); err != nil {
		return err
	}
	*j = JobIDs(ids)
	return nil
}

// LineItem is a priced row on an estimate or invoice
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// LineItems is stored as a JSON array
type LineItems []LineItem

// Value implements driver.Valuer
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return encodeJSONColumn([]LineItem(l))
}

// Scan implements sql.Scanner
func (l *LineItems) Scan(src any) error {
	var items []LineItem
	if err := decodeJSONColumn(src, &items); err != nil {
		return err
	}
	*l = LineItems(items)
	return nil
}

// StringList is a JSON encoded list of strings
type StringList []string

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return encodeJSONColumn([]string(s))
}

// Scan implements sql.Scanner
func (s *StringList) Scan(src any) error {
	var list []string
	if err := decodeJSONColumn(src, &list); err != nil {
		return err
	}
	*s = StringList(list)
	return nil
}

// RawJSON keeps an arbitrary JSON document unchanged between request and column.
type RawJSON json.RawMessage

// MarshalJSON renders an empty value as an empty list
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("[]"), nil
	}
	return []byte(r), nil
}

// UnmarshalJSON stores the document as received
func (r *RawJSON) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = nil
		return nil
	}
	*r = append((*r)[0:0], b...)
	return nil
}

// Value implements driver.Valuer
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	if !json.Valid(r) {
		return nil, fmt.Errorf("encode json column: invalid document")
	}
	return string(r), nil
}

// Scan implements sql.Scanner
func (r *RawJSON) Scan(src any) error {
	var msg json.RawMessage
	if err := decodeJSONColumn(src, &msg); err != nil {
		return err
	}
	*r = RawJSON(msg)
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD. The zero value is NULL.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or RFC3339
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return NewDate(t), nil
}

// Ptr returns nil for the zero date
func (d Date) Ptr() *Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v)
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			*d = Date{t}
			return nil
		}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseClock parses "HH:MM[:SS]" (hours may exceed 24) into a duration.
// An empty string is zero.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

// FormatClock renders d as HH:MM:SS
func FormatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FormatHoursMinutes renders d as H:MM, used for per-job totals
func FormatHoursMinutes(d time.Duration) string {
	mins := int64(d / time.Minute)
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

// ClockSum adds clock strings, ignoring unparsable values
func ClockSum(values ...*string) time.Duration {
	var total time.Duration
	for _, v := range values {
		if v == nil {
			continue
		}
		if d, err := ParseClock(*v); err == nil {
			total += d
		}
	}
	return total
}
