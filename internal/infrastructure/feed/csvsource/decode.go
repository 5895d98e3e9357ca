package csvsource

import (
	"encoding/csv"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
)

// ErrSchemaMismatch means a header lacks a column the feed cannot do without.
var ErrSchemaMismatch = crerr.New("feed schema mismatch")

var nullTokens = map[string]struct{}{
	"":     {},
	"-":    {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

var headerReplacer = strings.NewReplacer(" ", "_", "-", "_", ".", "_", "/", "_")

type fieldBinding struct {
	field  int
	column int
	name   string
}

// Decode reads one CSV export of kind. Malformed lines come back as records carrying a
// *feed.ParseError; only an unreadable stream or a header without required columns fails.
func Decode(kind feed.Kind, r io.Reader, delimiter rune) ([]feed.Record, error) {
	if _, err := feed.NewRow(kind); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	if delimiter != 0 {
		reader.Comma = delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "read %s header", kind)
	}

	bindings, err := bindColumns(kind, header)
	if err != nil {
		return nil, err
	}

	out := make([]feed.Record, 0, 256)
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, crerr.Wrapf(err, "read %s", kind)
			}
			out = append(out, feed.Record{
				Kind: kind,
				Line: parseErr.StartLine,
				Err:  &feed.ParseError{Field: "row", Err: parseErr.Err},
			})
			continue
		}

		line, _ := reader.FieldPos(0)
		if blankLine(values) {
			continue
		}
		row, err := decodeRow(kind, bindings, values)
		if err != nil {
			out = append(out, feed.Record{Kind: kind, Line: line, Err: err})
			continue
		}
		out = append(out, feed.Record{Kind: kind, Line: line, Row: row})
	}

	return out, nil
}

func bindColumns(kind feed.Kind, header []string) ([]fieldBinding, error) {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		name := normalizeHeader(raw)
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}

	row, _ := feed.NewRow(kind)
	typ := reflect.TypeOf(row).Elem()

	bindings := make([]fieldBinding, 0, typ.NumField())
	var missing []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("csv")
		if field.PkgPath != "" || tag == "" {
			continue
		}

		synonyms := strings.Split(tag, ",")
		column := -1
		for _, synonym := range synonyms {
			if idx, ok := index[synonym]; ok {
				column = idx
				break
			}
		}
		if column < 0 {
			if strings.Contains(field.Tag.Get("validate"), "required") {
				missing = append(missing, synonyms[0])
			}
			continue
		}
		bindings = append(bindings, fieldBinding{field: i, column: column, name: synonyms[0]})
	}

	if len(missing) > 0 {
		return nil, crerr.Wrapf(ErrSchemaMismatch, "%s header is missing %s", kind, strings.Join(missing, ", "))
	}
	return bindings, nil
}

func decodeRow(kind feed.Kind, bindings []fieldBinding, values []string) (feed.Row, error) {
	row, err := feed.NewRow(kind)
	if err != nil {
		return nil, err
	}
	target := reflect.ValueOf(row).Elem()

	for _, binding := range bindings {
		raw := ""
		if binding.column < len(values) {
			raw = strings.TrimSpace(values[binding.column])
		}

		field := target.Field(binding.field)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Pointer:
			value, err := parseMetric(raw)
			if err != nil {
				return nil, &feed.ParseError{Field: binding.name, Value: raw, Err: err}
			}
			if value != nil {
				field.Set(reflect.ValueOf(value))
			}
		}
	}
	return row, nil
}

func parseMetric(raw string) (*float64, error) {
	if _, ok := nullTokens[strings.ToLower(raw)]; ok {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func normalizeHeader(raw string) string {
	raw = strings.TrimPrefix(raw, "\ufeff")
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
}

func blankLine(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
