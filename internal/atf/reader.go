package atf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is one optional header record. Values holds the text after '='
// followed by any further tab-separated fields.
type Record struct {
	Key    string
	Values []string
}

// Value returns the first value, or "".
func (r Record) Value() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// File is a parsed ATF file.
type File struct {
	Version string
	Records []Record
	Columns []string
	TimesMS []float64
	Values  []float64
}

// Record looks up a header record by key.
func (f *File) Record(key string) (Record, bool) {
	for _, r := range f.Records {
		if r.Key == key {
			return r, true
		}
	}
	return Record{}, false
}

// Comment returns the Comment record value.
func (f *File) Comment() string {
	r, _ := f.Record(KeyComment)
	return r.Value()
}

// Read parses a two-column ATF file.
func Read(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return strings.TrimRight(sc.Text(), "\r"), true
	}

	first, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	sig := strings.Split(first, "\t")
	if len(sig) != 2 || sig[0] != Signature {
		return nil, fmt.Errorf("%w: line 1: expected %q signature, got %q", ErrMalformed, Signature, first)
	}
	f := &File{Version: sig[1]}

	counts, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing record counts", ErrMalformed)
	}
	nRecords, nColumns, err := parseCounts(counts)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
	}
	if nColumns != 2 {
		return nil, fmt.Errorf("%w: expected 2 data columns, got %d", ErrMalformed, nColumns)
	}

	for i := 0; i < nRecords; i++ {
		text, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d header records, got %d", ErrMalformed, nRecords, i)
		}
		rec, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		f.Records = append(f.Records, rec)
	}

	header, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing column header", ErrMalformed)
	}
	f.Columns = unquoteFields(header)
	if len(f.Columns) != nColumns {
		return nil, fmt.Errorf("%w: line %d: expected %d column titles, got %d", ErrMalformed, line, nColumns, len(f.Columns))
	}

	for {
		text, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != nColumns {
			return nil, fmt.Errorf("%w: line %d: expected %d values, got %d", ErrMalformed, line, nColumns, len(fields))
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: time: %v", ErrMalformed, line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: value: %v", ErrMalformed, line, err)
		}
		f.TimesMS = append(f.TimesMS, t)
		f.Values = append(f.Values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stimulus file: %w", err)
	}
	return f, nil
}

// ReadFile parses the ATF file at path.
func ReadFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stimulus file: %w", err)
	}
	defer file.Close()
	return Read(file)
}

func parseCounts(text string) (int, int, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two counts, got %q", text)
	}
	records, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || records < 0 {
		return 0, 0, fmt.Errorf("invalid record count %q", fields[0])
	}
	columns, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || columns < 1 {
		return 0, 0, fmt.Errorf("invalid column count %q", fields[1])
	}
	return records, columns, nil
}

func parseRecord(text string) (Record, error) {
	fields := unquoteFields(text)
	if len(fields) == 0 {
		return Record{}, fmt.Errorf("empty header record")
	}
	key, value, found := strings.Cut(fields[0], "=")
	if !found {
		return Record{}, fmt.Errorf("header record %q has no '='", fields[0])
	}
	rec := Record{Key: key}
	if value != "" || len(fields) == 1 {
		rec.Values = append(rec.Values, value)
	}
	rec.Values = append(rec.Values, fields[1:]...)
	return rec, nil
}

func unquoteFields(text string) []string {
	parts := strings.Split(text, "\t")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), "\""))
	}
	return out
}
