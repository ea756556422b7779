package inbox

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/destrack/internal/transfer"
)

// Importer adds a decoded document to the data set. *tracker.Tracker
// implements it.
type Importer interface {
	Import(ctx context.Context, doc transfer.Document) (transfer.Result, error)
}

// Event is the outcome of one inbox file.
type Event struct {
	File   string
	Result transfer.Result
	Err    error
}

// stamp identifies one version of a file on disk.
type stamp struct {
	modTime time.Time
	size    int64
}

// Inbox imports the files a Watcher reports.
type Inbox struct {
	importer Importer
	logger   *zap.Logger
	imported map[string]stamp // owned by Run
}

// New returns an Inbox importing through importer. A nil logger is replaced
// with a no-op one.
func New(importer Importer, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{importer: importer, logger: logger, imported: make(map[string]stamp)}
}

// ImportFile decodes and imports the document at path.
func (in *Inbox) ImportFile(ctx context.Context, path string) (transfer.Result, error) {
	doc, err := transfer.ReadFile(path)
	if err != nil {
		return transfer.Result{}, err
	}
	return in.importer.Import(ctx, doc)
}

// Run imports every path received on changes until ctx is done or changes
// is closed. Files that vanished before they could be read are skipped, as
// are files whose size and modification time match their last import.
// Invalid documents are logged and reported, and do not stop the loop.
// report may be nil.
func (in *Inbox) Run(ctx context.Context, changes <-chan string, report func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			info, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				in.logger.Debug("inbox file vanished", zap.String("file", path))
				continue
			}
			var st stamp
			if err == nil {
				st = stamp{modTime: info.ModTime(), size: info.Size()}
				if last, ok := in.imported[path]; ok && last.size == st.size && last.modTime.Equal(st.modTime) {
					in.logger.Debug("inbox file unchanged", zap.String("file", path))
					continue
				}
			}
			res, err := in.ImportFile(ctx, path)
			if errors.Is(err, fs.ErrNotExist) {
				in.logger.Debug("inbox file vanished", zap.String("file", path))
				continue
			}
			if err != nil {
				in.logger.Warn("inbox import skipped", zap.String("file", path), zap.Error(err))
			} else {
				in.imported[path] = st
				in.logger.Info("inbox import",
					zap.String("file", path),
					zap.String("project", res.Project.ID),
					zap.Int("dropped", res.Dropped))
			}
			if report != nil {
				report(Event{File: path, Result: res, Err: err})
			}
		}
	}
}
