package feed

import (
	"context"
	"fmt"
)

// Source exposes the raw records of each feed. An error means the feed itself could not
// be read; malformed lines come back as records with Err set.
type Source interface {
	Read(ctx context.Context, kind Kind) ([]Record, error)
}

// StaticSource serves records held in memory, keyed by feed.
type StaticSource map[Kind][]Record

func (s StaticSource) Read(ctx context.Context, kind Kind) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	records := s[kind]
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

// Rows wraps typed rows as records numbered from line 2, as if read below a header.
func Rows(kind Kind, rows ...Row) []Record {
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		out = append(out, Record{Kind: kind, Line: i + 2, Row: row})
	}
	return out
}
