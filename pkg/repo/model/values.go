package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05.000000"
)

var dateLayouts = []string{
	DateTimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
}

// ParseDate accepts the date shapes found in hand-edited workbooks and logs,
// including Excel serial numbers.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isNull(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseInt accepts integers and whole floats such as "3.0".
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isNull(s) {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isNull(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeKey canonicalises a lot or passage cell for equality checks:
// "7", "7.0" and " 7 " compare equal.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func SameKey(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}

func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "nat", "none", "null", "<na>", "n/a":
		return true
	}
	return false
}

// OptInt is an integer cell that may be blank.
type OptInt struct {
	V     int
	Valid bool
}

func IntOf(v int) OptInt {
	return OptInt{V: v, Valid: true}
}

func (o OptInt) String() string {
	if !o.Valid {
		return ""
	}
	return strconv.Itoa(o.V)
}

func (o OptInt) MarshalCSV() (string, error) {
	return o.String(), nil
}

func (o *OptInt) UnmarshalCSV(s string) error {
	o.V, o.Valid = ParseInt(s)
	return nil
}

func (o OptInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = OptInt{}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = IntOf(v)
	return nil
}

// Date is a calendar day serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.Local)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalCSV(s string) error {
	t, ok := ParseDate(s)
	if !ok {
		d.Time = time.Time{}
		return nil
	}
	*d = DateOf(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		d.Time = time.Time{}
		return nil
	}
	return d.UnmarshalCSV(*s)
}

// DateTime is a timestamp written in the log's microsecond layout.
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(DateTimeLayout), nil
}

func (d *DateTime) UnmarshalCSV(s string) error {
	t, _ := ParseDate(s)
	d.Time = t
	return nil
}
