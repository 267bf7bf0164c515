package catalog

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	tio "github.com/matzehuels/talklike/pkg/io"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// scriptExt marks Lua files referenced by a definition's script.file.
const scriptExt = ".lua"

// Watcher reports definition files that change in a set of directories.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dirs     []string
	debounce time.Duration
	onChange func(ids []string)
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer

	flushMu sync.Mutex

	done chan struct{}
}

// Watch starts watching dirs and calls onChange with the sorted ids of
// changed, created, removed or renamed definitions. A changed Lua script
// reports the definitions whose script.file points at it. Calls are
// debounced and never overlap. The watcher stops when ctx ends or Close is called.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, logger *log.Logger, onChange func(ids []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	w := &Watcher{
		fsw:      fsw,
		dirs:     dirs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		pending:  make(map[string]bool),
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.stop()
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.stop()
				return
			}
			w.logger.Warn("filter watcher", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	var ids []string
	switch ext := strings.ToLower(filepath.Ext(ev.Name)); {
	case slices.Contains(tio.Extensions, ext):
		ids = []string{tio.Stem(ev.Name)}
	case ext == scriptExt:
		ids = w.scriptUsers(ev.Name)
	}
	if len(ids) == 0 {
		return
	}
	w.logger.Debug("filter changed", "ids", ids, "file", ev.Name, "op", ev.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range ids {
		w.pending[id] = true
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

// scriptUsers returns the ids of watched definitions whose script file is
// script. Definitions that fail to decode are skipped.
func (w *Watcher) scriptUsers(script string) []string {
	paths, err := NewDirSource(w.dirs...).Paths()
	if err != nil {
		w.logger.Warn("filter watcher", "err", err)
		return nil
	}
	script = filepath.Clean(script)
	var ids []string
	for id, path := range paths {
		format, err := tio.FormatFromPath(path)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		def, err := tio.Decode(data, format)
		if err != nil || def.Script == nil || def.Script.File == "" {
			continue
		}
		if filepath.Join(filepath.Dir(path), filepath.FromSlash(def.Script.File)) == script {
			ids = append(ids, id)
		}
	}
	return ids
}

func (w *Watcher) flush() {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	ids := slices.Sorted(maps.Keys(w.pending))
	w.pending = make(map[string]bool)
	w.mu.Unlock()
	if len(ids) > 0 && w.onChange != nil {
		w.onChange(ids)
	}
}

// stop cancels a pending flush and closes the fsnotify watcher.
func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.fsw.Close()
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
