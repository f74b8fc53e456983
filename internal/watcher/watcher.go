// Package watcher detects stable file arrivals in a drop folder. fsnotify
// supplies change events; a periodic rescan walks the tree so pre-existing
// files and anything fsnotify missed are recovered. A file is only reported
// after it has stayed unmodified for the stability window, which absorbs
// slow cloud-sync writes.
package watcher

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultExtensions is the allow-list of source formats.
var DefaultExtensions = []string{".txt", ".md", ".json", ".srt", ".pdf", ".docx", ".eml"}

// Config tunes one observation.
type Config struct {
	StabilityWindow time.Duration
	RescanInterval  time.Duration
	// MaxDepth bounds recursion below the root: 0 means root only.
	MaxDepth   int
	Extensions []string
}

func (c *Config) fill() {
	if c.StabilityWindow <= 0 {
		c.StabilityWindow = 5 * time.Second
	}
	if c.RescanInterval <= 0 {
		c.RescanInterval = 5 * time.Minute
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 2
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
}

// Event reports one file that survived filtering and the stability window.
type Event struct {
	Path     string
	StableAt time.Time
}

// Watcher observes a single root folder. Create via Observe; stop via Close.
type Watcher struct {
	root string
	cfg  Config

	fsw    *fsnotify.Watcher
	events chan Event
	errs   chan error
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	pending map[string]*time.Timer
	emitted map[string]time.Time
}

// Observe starts watching root. The initial scan runs immediately so a
// restart picks up any backlog already sitting in the folder.
func Observe(root string, cfg Config) (*Watcher, error) {
	cfg.fill()
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("init fsnotify: %w", err)
	}
	w := &Watcher{
		root:    filepath.Clean(root),
		cfg:     cfg,
		fsw:     fsw,
		events:  make(chan Event, 64),
		errs:    make(chan error, 8),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
		emitted: make(map[string]time.Time),
	}
	if err := w.addWatches(); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.run()
	w.rescan()
	return w, nil
}

// Root returns the observed folder.
func (w *Watcher) Root() string { return w.root }

// Events returns the stable-file event stream. The channel is never closed;
// callers should stop reading once Done is closed.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors surfaces filesystem-level watch faults. These never stop the
// watcher; other events keep flowing.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Done is closed when the watcher has been shut down.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Close stops event sourcing. Timers already armed are cancelled; events
// already delivered stay valid.
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.done)
		w.fsw.Close()
		w.mu.Lock()
		for path, timer := range w.pending {
			timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) addWatches() error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree is a fault, not a crash
		}
		if !d.IsDir() {
			return nil
		}
		if w.depthOf(path) > w.cfg.MaxDepth {
			return fs.SkipDir
		}
		if path != w.root && Ignored(d.Name()) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.fault(fmt.Errorf("watch %s: %w", path, err))
		}
		return nil
	})
}

// depthOf counts path elements below the root.
func (w *Watcher) depthOf(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.cfg.RescanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.fault(err)
			}
		case <-ticker.C:
			w.rescan()
		}
	}
}

func (w *Watcher) handleFsEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return // gone already; renames and deletes land here
	}
	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 && w.depthOf(ev.Name) <= w.cfg.MaxDepth && !Ignored(filepath.Base(ev.Name)) {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.fault(fmt.Errorf("watch %s: %w", ev.Name, err))
			}
			w.scanDir(ev.Name)
		}
		return
	}
	w.schedule(ev.Name)
}

// rescan walks the tree scheduling every eligible file. It doubles as the
// initial backlog scan and as the recovery path for missed events.
func (w *Watcher) rescan() {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.fault(fmt.Errorf("scan %s: %w", path, err))
			return nil
		}
		if d.IsDir() {
			if w.depthOf(path) > w.cfg.MaxDepth {
				return fs.SkipDir
			}
			if path != w.root && Ignored(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		w.schedule(path)
		return nil
	})
	if err != nil {
		w.fault(fmt.Errorf("rescan %s: %w", w.root, err))
	}
}

func (w *Watcher) scanDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.fault(fmt.Errorf("scan %s: %w", dir, err))
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.schedule(filepath.Join(dir, e.Name()))
		}
	}
}

// schedule arms (or re-arms) the stability timer for a candidate file.
// Ignore-pattern matches are dropped silently; disallowed extensions are
// dropped without even a log line since rescans revisit every file.
func (w *Watcher) schedule(path string) {
	base := filepath.Base(path)
	if Ignored(base) {
		log.Printf("ignoring %s (noise pattern)", path)
		return
	}
	if !w.allowedExt(path) {
		return
	}
	if w.depthOf(filepath.Dir(path)) > w.cfg.MaxDepth {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.cfg.StabilityWindow)
		return
	}
	w.pending[path] = time.AfterFunc(w.cfg.StabilityWindow, func() {
		w.settle(path)
	})
}

// settle fires when a file's stability timer elapses. If the file changed
// again in the meantime the wait restarts; otherwise the event is emitted
// exactly once per (path, modtime).
func (w *Watcher) settle(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}
	if time.Since(info.ModTime()) < w.cfg.StabilityWindow {
		w.mu.Lock()
		if timer, ok := w.pending[path]; ok {
			timer.Reset(w.cfg.StabilityWindow)
		}
		w.mu.Unlock()
		return
	}
	w.mu.Lock()
	delete(w.pending, path)
	already := w.emitted[path].Equal(info.ModTime())
	if !already {
		w.emitted[path] = info.ModTime()
	}
	w.mu.Unlock()
	if already {
		return
	}
	select {
	case w.events <- Event{Path: path, StableAt: time.Now().UTC()}:
	case <-w.done:
	}
}

func (w *Watcher) allowedExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range w.cfg.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (w *Watcher) fault(err error) {
	select {
	case w.errs <- err:
	default:
		log.Printf("watcher fault (queue full): %v", err)
	}
}
