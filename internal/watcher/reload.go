package watcher

import (
	"context"
	"time"

	"github.com/conneroisu/glyph/internal/loader"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/types"
)

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 200 * time.Millisecond

// IconSink receives reloaded definitions.
type IconSink interface {
	AddIcon(defs ...*types.IconDefinition) error
}

// PackReloader re-reads icon sources after changes and re-adds every
// definition to the sink. Definitions whose files were deleted stay
// registered until the service is cleared.
type PackReloader struct {
	paths  []string
	loader *loader.Loader
	sink   IconSink
	logger logging.Logger
	fw     *FileWatcher
}

// NewPackReloader watches paths and feeds sink.
func NewPackReloader(paths []string, sink IconSink, debounce time.Duration, logger logging.Logger) (*PackReloader, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := NewFileWatcher(debounce, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(loader.IsSource)
	fw.AddFilter(NoHiddenFilter)
	fw.AddFilter(NoTempFilter)

	for _, path := range paths {
		if err := fw.AddPath(path); err != nil {
			_ = fw.Stop()
			return nil, err
		}
	}

	r := &PackReloader{
		paths:  paths,
		loader: loader.New(logger),
		sink:   sink,
		logger: logger.WithComponent("reload"),
		fw:     fw,
	}
	fw.AddHandler(r.handle)
	return r, nil
}

// Start begins watching until ctx is done.
func (r *PackReloader) Start(ctx context.Context) error {
	return r.fw.Start(ctx)
}

// Stop releases the underlying watcher.
func (r *PackReloader) Stop() error {
	return r.fw.Stop()
}

// Reload reads every path and adds the result to the sink.
func (r *PackReloader) Reload(ctx context.Context) (int, error) {
	defs, err := r.loader.Load(ctx, r.paths...)
	if err != nil {
		return 0, err
	}
	if err := r.sink.AddIcon(defs...); err != nil {
		return 0, err
	}
	return len(defs), nil
}

func (r *PackReloader) handle(ctx context.Context, events []ChangeEvent) error {
	n, err := r.Reload(ctx)
	if err != nil {
		return err
	}
	r.logger.Info(ctx, "Icon sources reloaded", "changes", len(events), "icons", n)
	return nil
}
