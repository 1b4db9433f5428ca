package presence

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads verdicts that an external classifier process writes to a
// signal file, one verdict per write. It watches the parent directory with
// fsnotify so writers that replace the file by rename are still seen, and
// falls back to polling the file's mtime when fsnotify is unavailable.
type FileSource struct {
	path         string
	logger       *slog.Logger
	pollInterval time.Duration
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger, pollInterval: 250 * time.Millisecond}
}

// Run emits a Sample for each update to the signal file until ctx is done.
// It closes out on return.
func (f *FileSource) Run(ctx context.Context, out chan<- Sample) error {
	defer close(out)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		f.logger.Info("fsnotify unavailable, falling back to polling", "error", err)
		return f.poll(ctx, out)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(f.path)); err != nil {
		f.logger.Info("cannot watch signal directory, falling back to polling", "path", f.path, "error", err)
		return f.poll(ctx, out)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				f.emit(ctx, out)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			f.logger.Info("fsnotify error, switching to polling", "error", err)
			return f.poll(ctx, out)
		}
	}
}

func (f *FileSource) poll(ctx context.Context, out chan<- Sample) error {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(f.path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(last) {
				continue
			}
			last = info.ModTime()
			f.emit(ctx, out)
		}
	}
}

func (f *FileSource) emit(ctx context.Context, out chan<- Sample) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.logger.Warn("read presence signal", "path", f.path, "error", err)
		return
	}
	sample, err := ParseVerdict(string(data))
	if err != nil {
		f.logger.Warn("presence detection failed", "path", f.path, "error", err)
		return
	}
	select {
	case out <- sample:
	case <-ctx.Done():
	}
}

// ParseVerdict reads the last non-empty line of a classifier verdict.
func ParseVerdict(raw string) (Sample, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	verdict := strings.ToLower(strings.TrimSpace(lines[len(lines)-1]))
	switch verdict {
	case "1", "present", "true", "face", "yes":
		return Sample{Present: true}, nil
	case "0", "absent", "false", "none", "no":
		return Sample{Present: false}, nil
	}
	return Sample{}, fmt.Errorf("unrecognized presence verdict %q", verdict)
}
