package rejectlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-warehouse/internal/domain/rejection"
	"github.com/valyala/bytebufferpool"
)

// JSONLSink appends rejected records to a file, one JSON object per line.
type JSONLSink struct {
	path string
	mu   sync.Mutex
}

func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: strings.TrimSpace(path)}
}

func (s *JSONLSink) Write(ctx context.Context, records []rejection.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if s.path == "" {
		return crerr.New("rejection log path is required")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, record := range records {
		line, err := sonic.Marshal(record)
		if err != nil {
			return crerr.Wrapf(err, "marshal rejection feed=%s line=%d", record.Feed, record.Line)
		}
		_, _ = buf.Write(line)
		_ = buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrapf(err, "create rejection log dir %s", dir)
		}
	}
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return crerr.Wrapf(err, "open rejection log %s", s.path)
	}
	if _, err := file.Write(buf.B); err != nil {
		_ = file.Close()
		return crerr.Wrapf(err, "write rejection log %s", s.path)
	}
	if err := file.Close(); err != nil {
		return crerr.Wrapf(err, "close rejection log %s", s.path)
	}
	return nil
}
