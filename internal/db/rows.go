package db

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// Row is one result row. Columns keep the order the query selected them in.
type Row struct {
	columns []string
	values  []any
}

// NewRow pairs column names with values. Both slices must have the same length.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

func (r Row) Columns() []string { return r.columns }

// Get returns the value of the named column.
func (r Row) Get(column string) (any, bool) {
	for i, name := range r.columns {
		if name == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// MarshalJSON writes the row as an object whose keys follow column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Rows is an ordered query result. It is never nil when returned by a Pool,
// so an empty result encodes as [] rather than null.
type Rows []Row

// normalize turns driver values into JSON-friendly ones.
func normalize(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
