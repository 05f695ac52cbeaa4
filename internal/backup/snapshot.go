package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	pkgerrors "hr-ledger/pkg/errors"
)

// Row one table row keyed by column name
type Row = map[string]interface{}

// Section rows of one table
type Section struct {
	Table string
	Rows  []Row
}

// Snapshot full dataset, one section per table in dependency order.
// Encodes as a JSON object whose keys keep that order.
type Snapshot struct {
	Sections []Section
}

// NewSnapshot returns a snapshot holding every table with no rows
func NewSnapshot() *Snapshot {
	names := TableNames()
	s := &Snapshot{Sections: make([]Section, len(names))}
	for i, name := range names {
		s.Sections[i] = Section{Table: name, Rows: []Row{}}
	}
	return s
}

// Rows returns the rows of table, nil when the table is unknown
func (s *Snapshot) Rows(table string) []Row {
	for _, sec := range s.Sections {
		if sec.Table == table {
			return sec.Rows
		}
	}
	return nil
}

// Set replaces the rows of table
func (s *Snapshot) Set(table string, rows []Row) {
	if rows == nil {
		rows = []Row{}
	}
	for i := range s.Sections {
		if s.Sections[i].Table == table {
			s.Sections[i].Rows = rows
			return
		}
	}
	s.Sections = append(s.Sections, Section{Table: table, Rows: rows})
}

// RowCount total rows across all tables
func (s *Snapshot) RowCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Rows)
	}
	return n
}

// MarshalJSON writes the sections as one ordered object
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range s.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sec.Table)
		if err != nil {
			return nil, err
		}
		rows := sec.Rows
		if rows == nil {
			rows = []Row{}
		}
		val, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", sec.Table, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is ParseSnapshot
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// ── export normalization ──

// NormalizeRow converts store values into their snapshot form.
// Dates are written as YYYY-MM-DD and byte slices as text.
func NormalizeRow(t Table, row Row) Row {
	out := make(Row, len(t.Columns))
	for _, col := range t.Columns {
		v, ok := row[col.Name]
		if !ok || v == nil {
			out[col.Name] = nil
			continue
		}
		switch col.Kind {
		case KindDate:
			if tv, ok := v.(time.Time); ok {
				v = tv.Format("2006-01-02")
			}
		case KindText:
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
		}
		out[col.Name] = v
	}
	return out
}

// ── parsing ──

// ParseSnapshot validates raw JSON and coerces every value to its column kind.
// All failures are validation errors; nothing here touches the store.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var sections map[string]json.RawMessage
	if err := decodeNumbers(raw, &sections); err != nil || sections == nil {
		return nil, pkgerrors.Validation("backup must be a JSON object keyed by table name")
	}

	snap := &Snapshot{Sections: make([]Section, 0, len(ordered))}
	for _, t := range ordered {
		body, ok := sections[t.Name]
		if !ok {
			return nil, pkgerrors.Validationf("missing table %s", t.Name)
		}

		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil || items == nil {
			return nil, pkgerrors.Validationf("table %s must be an array of rows", t.Name)
		}

		rows := make([]Row, 0, len(items))
		for i, item := range items {
			var values map[string]interface{}
			if err := decodeNumbers(item, &values); err != nil || values == nil {
				return nil, pkgerrors.Validationf("%s[%d] must be an object", t.Name, i)
			}
			row, err := coerceRow(t, values)
			if err != nil {
				return nil, pkgerrors.Validationf("%s[%d].%v", t.Name, i, err)
			}
			rows = append(rows, row)
		}
		snap.Sections = append(snap.Sections, Section{Table: t.Name, Rows: rows})
	}
	return snap, nil
}

// Validate checks an in-memory snapshot the way ParseSnapshot checks raw JSON.
// It returns a copy holding the six tables in restore order, each row carrying
// the table's full column set with coerced values.
func Validate(s *Snapshot) (*Snapshot, error) {
	if s == nil {
		return nil, pkgerrors.Validation("backup body is required")
	}
	out := &Snapshot{Sections: make([]Section, 0, len(ordered))}
	for _, t := range ordered {
		rows := s.Rows(t.Name)
		if rows == nil {
			return nil, pkgerrors.Validationf("missing table %s", t.Name)
		}
		coerced := make([]Row, 0, len(rows))
		for i, values := range rows {
			if values == nil {
				return nil, pkgerrors.Validationf("%s[%d] must be an object", t.Name, i)
			}
			row, err := coerceRow(t, values)
			if err != nil {
				return nil, pkgerrors.Validationf("%s[%d].%v", t.Name, i, err)
			}
			coerced = append(coerced, row)
		}
		out.Sections = append(out.Sections, Section{Table: t.Name, Rows: coerced})
	}
	return out, nil
}

func decodeNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data")
	}
	return nil
}

// coerceRow builds a row with the table's full column set; unknown keys are dropped
func coerceRow(t Table, values map[string]interface{}) (Row, error) {
	row := make(Row, len(t.Columns))
	for _, col := range t.Columns {
		v, ok := values[col.Name]
		if !ok || v == nil {
			if col.Required {
				return nil, fmt.Errorf("%s is required", col.Name)
			}
			row[col.Name] = nil
			continue
		}
		cv, err := coerce(col.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", col.Name, err)
		}
		row[col.Name] = cv
	}
	return row, nil
}

func coerce(kind ColumnKind, v interface{}) (interface{}, error) {
	switch kind {
	case KindInt:
		return toInt(v)
	case KindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case json.Number:
			return x.String(), nil
		}
	case KindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			if b, err := strconv.ParseBool(x); err == nil {
				return b, nil
			}
		}
	case KindTime:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case string:
			return parseTimestamp(x)
		}
	case KindDate:
		switch x := v.(type) {
		case time.Time:
			return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC), nil
		case string:
			return parseDate(x)
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, v)
}

func toInt(v interface{}) (int64, error) {
	var n json.Number
	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("expected integer, got %q", n.String())
	}
	return int64(f), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// parseDate accepts a plain date or a timestamp and keeps only its calendar date
func parseDate(s string) (time.Time, error) {
	if len(s) == len("2006-01-02") {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			return d, nil
		}
	}
	if t, err := parseTimestamp(s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
