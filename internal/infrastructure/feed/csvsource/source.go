package csvsource

import (
	"context"
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
)

type Config struct {
	Paths     map[feed.Kind]string
	Delimiter rune
}

// Source reads each feed from its own CSV file.
type Source struct {
	paths     map[feed.Kind]string
	delimiter rune
	logger    *logging.Logger
}

func New(cfg Config, logger *logging.Logger) *Source {
	if logger == nil {
		logger = logging.Default()
	}
	paths := make(map[feed.Kind]string, len(cfg.Paths))
	for kind, path := range cfg.Paths {
		paths[kind] = strings.TrimSpace(path)
	}
	delimiter := cfg.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}
	return &Source{paths: paths, delimiter: delimiter, logger: logger}
}

func (s *Source) Read(ctx context.Context, kind feed.Kind) ([]feed.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.paths[kind]
	if path == "" {
		return nil, crerr.Newf("no file configured for feed %s", kind)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open feed %s", kind)
	}
	defer file.Close()

	records, err := Decode(kind, file, s.delimiter)
	if err != nil {
		return nil, crerr.Wrapf(err, "decode feed %s from %s", kind, path)
	}

	malformed := 0
	for _, record := range records {
		if record.Err != nil {
			malformed++
		}
	}
	s.logger.InfoContext(ctx, "feed read", "feed", kind, "path", path, "records", len(records), "malformed", malformed)
	return records, nil
}
