// Package watch re-segments lesson recordings as their files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/PheelaV/kr-notebook/internal/logging"
	"github.com/PheelaV/kr-notebook/internal/manifest"
	"github.com/PheelaV/kr-notebook/internal/segment"
)

const (
	lockFileName    = ".watch.lock"
	defaultDebounce = 500 * time.Millisecond
)

// ErrAlreadyWatching reports that another process already watches the lesson.
var ErrAlreadyWatching = errors.New("watch: another watcher holds the lesson lock")

// ResultFunc receives the outcome of every triggered re-segmentation.
type ResultFunc func(res segment.Result, err error)

// Watcher re-runs segmentation for a recording whenever its file changes.
// Audio editors save in rapid bursts of writes, so events are coalesced
// per file before the engine runs. One watcher may run per lesson,
// enforced with a lock file beside the manifest.
type Watcher struct {
	engine   *segment.Engine
	logger   *slog.Logger
	debounce time.Duration
	onResult ResultFunc

	lessonDir string
	index     map[string]string
	lock      *flock.Flock
	fw        *fsnotify.Watcher
	log       *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending chan string

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option adjusts watcher construction.
type Option func(*Watcher)

// WithDebounce overrides how long a changed file must stay quiet before
// re-segmentation starts.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithResultFunc registers a callback invoked after every triggered run.
func WithResultFunc(fn ResultFunc) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New builds a watcher around the segmentation engine.
func New(engine *segment.Engine, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if engine == nil {
		return nil, errors.New("watch: engine is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Watcher{
		engine:   engine,
		logger:   logging.NewComponentLogger(logger, "watch"),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	return w, nil
}

// Start loads the lesson manifest, acquires the watch lock, and begins
// watching the directories holding row and column recordings. It returns
// once watching is established; changes are processed in the background
// until Stop is called or the context is cancelled.
func (w *Watcher) Start(ctx context.Context, lessonDir string) error {
	if w.running.Load() {
		return errors.New("watch: already started")
	}

	lesson := filepath.Base(lessonDir)
	store := manifest.NewStore(lessonDir, w.logger)
	if !store.Exists() {
		return segment.Wrap(segment.ErrManifestNotFound, lesson, "watch", store.Path(), nil)
	}
	m, err := store.Load(ctx)
	if err != nil {
		return err
	}

	index := make(map[string]string)
	dirs := make(map[string]struct{})
	for _, ref := range m.SourcesInOrder() {
		if ref.Source.File == "" {
			continue
		}
		path := filepath.Join(lessonDir, ref.Source.File)
		index[path] = ref.Source.Romanization
		dirs[filepath.Dir(path)] = struct{}{}
	}
	if len(index) == 0 {
		return fmt.Errorf("watch: lesson %s has no recordings", lesson)
	}

	lock := flock.New(filepath.Join(lessonDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("watch: acquire lock: %w", err)
	}
	if !locked {
		return ErrAlreadyWatching
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		_ = lock.Unlock()
		return fmt.Errorf("watch: start watcher: %w", err)
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			_ = lock.Unlock()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.lessonDir = lessonDir
	w.index = index
	w.lock = lock
	w.fw = fw
	w.log = w.logger.With(
		logging.String(logging.FieldRunID, uuid.NewString()),
		logging.String(logging.FieldLesson, lesson))
	w.timers = make(map[string]*time.Timer)
	w.pending = make(chan string, len(index))
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running.Store(true)
	go w.loop()

	w.log.Info("watching recordings",
		logging.Int("sources", len(index)),
		logging.Duration("debounce", w.debounce))
	return nil
}

// Stop ends watching and releases the lesson lock. It blocks until the
// event loop has drained.
func (w *Watcher) Stop() {
	if !w.running.Load() {
		return
	}

	w.cancel()
	_ = w.fw.Close()
	<-w.done

	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	if err := w.lock.Unlock(); err != nil {
		w.log.Warn("release watch lock failed", logging.Error(err))
	}
	w.running.Store(false)
	w.log.Info("watcher stopped")
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			// Create covers editors that save through a rename; Write
			// covers in-place saves. Everything else is noise.
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if _, tracked := w.index[path]; !tracked {
				continue
			}
			w.schedule(path)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", logging.Error(err))
		case path := <-w.pending:
			w.resegment(path)
		}
	}
}

// schedule arms or resets the per-file quiet timer. The file only reaches
// the work channel once it has stopped changing for the debounce window.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.pending <- path:
		case <-w.ctx.Done():
		}
	})
}

func (w *Watcher) resegment(path string) {
	key := w.index[path]
	res, err := w.engine.SegmentSource(w.ctx, w.lessonDir, key, w.engine.BaseParams(), nil)
	switch {
	case err != nil:
		w.log.Warn("re-segmentation failed",
			logging.String(logging.FieldSource, key),
			logging.Error(err))
	case res.Mismatch:
		w.log.Warn("clip count mismatch",
			logging.String(logging.FieldSource, res.Label),
			logging.Int("found", res.Found),
			logging.Int("expected", res.Expected))
	default:
		w.log.Info("recording re-segmented",
			logging.String(logging.FieldSource, res.Label),
			logging.Int("saved", res.Saved()))
	}
	if w.onResult != nil {
		w.onResult(res, err)
	}
}
