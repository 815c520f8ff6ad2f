// SPDX-License-Identifier: MPL-2.0

// Package watch regenerates output when an input document changes.
//
// The watcher observes the directories holding the input files, plus every
// directory under BaseDir when extra glob patterns are configured, so that
// editors that save through a rename are still noticed. Changes arriving
// within the debounce interval are coalesced into one OnChange call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultInterval = time.Second

// ErrInvalidWatchConfig is the class of Config validation failures.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

// Editor swap files and OS metadata never trigger regeneration.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Inputs are the documents whose changes trigger regeneration.
		Inputs []string

		// Patterns are doublestar globs, relative to BaseDir, selecting more
		// files to watch, such as documents pulled in through $ref.
		Patterns []string

		// Ignore adds to the built-in ignore patterns.
		Ignore []string

		// BaseDir anchors Patterns. It defaults to the first input's directory.
		BaseDir string

		// Interval is the quiet period after the last change before OnChange
		// runs. Zero or negative values use one second.
		Interval time.Duration

		// Timeout stops the watcher after the given duration. Zero means
		// watch until the context is canceled.
		Timeout time.Duration

		// OnChange receives the changed paths, inputs as configured and
		// pattern matches relative to BaseDir.
		OnChange func(ctx context.Context, changed []string) error

		Logger *log.Logger
	}

	// InvalidWatchConfigError lists every invalid Config field.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// Watcher monitors the inputs and runs OnChange after each burst of
	// changes. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		logger   *log.Logger
		inputs   map[string]string
		ignores  []string
		interval time.Duration
		baseDir  string
		started  atomic.Bool
	}
)

func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if len(c.Inputs) == 0 {
		errs = append(errs, errors.New("no inputs to watch"))
	}
	for _, in := range c.Inputs {
		if strings.TrimSpace(in) == "" {
			errs = append(errs, errors.New("input path must not be empty"))
		} else if isRemote(in) {
			errs = append(errs, fmt.Errorf("input %q is remote and cannot be watched", in))
		}
	}
	errs = append(errs, patternErrors(c.Patterns, "watch")...)
	errs = append(errs, patternErrors(c.Ignore, "ignore")...)
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base directory must not be blank"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", c.Timeout))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// New validates cfg and registers the directories to observe.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inputs := make(map[string]string, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve input %q: %w", in, err)
		}
		inputs[abs] = in
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(cfg.Inputs[0])
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		logger:   logger,
		inputs:   inputs,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		interval: interval,
		baseDir:  absBase,
	}
	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("Closing watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is canceled or the timeout elapses, both of which
// return nil. Fatal watcher errors are returned. A running OnChange sees its
// context canceled and Run waits for it to return.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		pending  = make(map[string]struct{})
		timer    *time.Timer
		running  atomic.Bool
		stopped  bool
		inflight sync.WaitGroup
	)

	// fire never overlaps itself: a burst that lands while OnChange is still
	// running is retried after another interval.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("Regeneration still running, deferring changes")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.interval)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Info("Input changed", "files", changed)
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("Regeneration failed", "err", err)
			}
		}
	}

	// schedule registers a timer callback with inflight so Run returns only
	// after OnChange has finished.
	schedule := func() {
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		inflight.Add(1)
		mu.Unlock()
		defer inflight.Done()
		fire()
	}

	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		cancel()
		inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("Closing watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				w.logger.Info("Watch timeout reached", "timeout", w.cfg.Timeout)
			}
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			// Permission and timestamp changes do not alter content.
			if evt.Op == fsnotify.Chmod {
				continue
			}
			if evt.Has(fsnotify.Create) && len(w.cfg.Patterns) > 0 {
				w.maybeAddDir(evt.Name)
			}
			name, ok := w.classify(evt.Name)
			if !ok {
				continue
			}

			mu.Lock()
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.interval, schedule)
			} else {
				timer.Reset(w.interval)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalWatchError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("Watcher error", "err", err)
		}
	}
}

// classify maps an event path to the name reported to OnChange.
func (w *Watcher) classify(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if name, ok := w.inputs[abs]; ok {
		return name, true
	}
	if len(w.cfg.Patterns) == 0 {
		return "", false
	}
	rel, err := filepath.Rel(w.baseDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.isIgnored(rel) || !matchAny(w.cfg.Patterns, rel) {
		return "", false
	}
	return rel, true
}

// addDirectories registers each input's directory and, when patterns are
// set, every non-ignored directory under BaseDir.
func (w *Watcher) addDirectories() error {
	dirs := make(map[string]struct{})
	for abs := range w.inputs {
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	if len(w.cfg.Patterns) > 0 {
		err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				w.logger.Debug("Skipping inaccessible path", "path", path, "err", err)
				return nil //nolint:nilerr // unreadable directories are not watched
			}
			if !d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(w.baseDir, path)
			if relErr != nil {
				return nil //nolint:nilerr // unreachable for paths under baseDir
			}
			if w.isIgnored(filepath.ToSlash(rel) + "/") {
				return filepath.SkipDir
			}
			dirs[path] = struct{}{}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch: walk %s: %w", w.baseDir, err)
		}
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnored(filepath.ToSlash(rel)+"/") {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("Watching new directory", "path", path, "err", err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func patternErrors(patterns []string, label string) []error {
	var errs []error
	for _, pat := range patterns {
		if strings.TrimSpace(pat) == "" {
			errs = append(errs, fmt.Errorf("%s pattern must not be empty", label))
			continue
		}
		if _, err := doublestar.Match(pat, ""); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s pattern %q: %w", label, pat, err))
		}
	}
	return errs
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
