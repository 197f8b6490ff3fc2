package csv

import (
	"bytes"
	stdcsv "encoding/csv"
)

type Record interface {
	Fields() []string
}

type FilterFunc[T Record] func(T) bool

// Create renders records under header. Records rejected by filter are left out.
func Create[T Record](header []string, records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write(r.Fields())
		}
	}
	w.Flush()
	return buf.Bytes()
}
