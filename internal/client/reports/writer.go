package reports

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securapass/internal/filex"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

// Uploader copies a rendered report to remote storage and returns its key.
type Uploader interface {
	Upload(ctx context.Context, name string, body []byte) (string, error)
}

// Saved tells where a report ended up. Key is empty when nothing was
// uploaded.
type Saved struct {
	Path string
	Key  string
}

type Writer struct {
	dir      string
	uploader Uploader
	logger   logging.Logger
}

// NewWriter stores reports under dir. uploader may be nil.
func NewWriter(dir string, uploader Uploader, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{dir: dir, uploader: uploader, logger: logger}
}

// Save writes r locally and then uploads it. An upload failure is logged and
// returned, but the local file is kept.
func (w *Writer) Save(ctx context.Context, r Report) (Saved, error) {
	body := r.Render()

	path, err := filex.WriteFileAtomic(w.dir, r.FileName(), body)
	if err != nil {
		return Saved{}, fmt.Errorf("write report: %w", err)
	}
	saved := Saved{Path: path}
	w.logger.Debug(ctx, "report written", "path", path)

	if w.uploader == nil {
		return saved, nil
	}
	key, err := w.uploader.Upload(ctx, r.FileName(), body)
	if err != nil {
		w.logger.Warn(ctx, "report upload failed", "path", path, "error", err)
		return saved, fmt.Errorf("upload report: %w", err)
	}
	saved.Key = key
	w.logger.Info(ctx, "report uploaded", "key", key)
	return saved, nil
}
