package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lrcsync/internal/logging"
	"lrcsync/internal/services"
)

// DefaultExtensions is the allow-list used when Options.Extensions is empty.
var DefaultExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".wav", ".dsf", ".aiff", ".aif"}

// ErrResourceFork marks an AppleDouble "._" companion file. These carry the
// audio extension of the file they shadow but hold no audio.
var ErrResourceFork = errors.New("AppleDouble resource fork, not audio")

// Options configures traversal.
type Options struct {
	// Extensions are matched case-insensitively with or without the leading dot.
	Extensions     []string
	FollowSymlinks bool
	// SkipHidden drops dot-prefixed files and directories below the root.
	SkipHidden bool
	// OnWarning is invoked synchronously for every per-entry failure.
	OnWarning func(Warning)
	Logger    *slog.Logger
}

// Warning records a directory entry that could not be read.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Scanner applies one traversal policy to any number of roots.
type Scanner struct {
	exts           map[string]struct{}
	followSymlinks bool
	skipHidden     bool
	onWarning      func(Warning)
	logger         *slog.Logger
}

// New builds a Scanner.
func New(opts Options) *Scanner {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Scanner{
		exts:           set,
		followSymlinks: opts.FollowSymlinks,
		skipHidden:     opts.SkipHidden,
		onWarning:      opts.OnWarning,
		logger:         logging.NewComponentLogger(opts.Logger, "scanner"),
	}
}

// Matches reports whether name carries an allowed extension.
func (s *Scanner) Matches(name string) bool {
	_, ok := s.exts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Open validates root and prepares a restartable scan. Missing, unreadable,
// or non-directory roots fail with services.ErrInvalidRoot.
func (s *Scanner) Open(root string) (*Scan, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", "empty root path", nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", "resolve root", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", abs, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", abs+" is not a directory", nil)
	}
	dir, err := os.Open(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", abs, err)
	}
	_, readErr := dir.ReadDir(1)
	_ = dir.Close()
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", abs, readErr)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidRoot, "scanner", "open", abs, err)
	}
	return &Scan{scanner: s, root: abs, canonicalRoot: canonical}, nil
}

// Scan is one validated root.
type Scan struct {
	scanner       *Scanner
	root          string
	canonicalRoot string

	mu       sync.Mutex
	warnings []Warning
}

// Root returns the absolute root path.
func (sc *Scan) Root() string {
	return sc.root
}

// Warnings returns the per-entry failures recorded by the most recent walk.
func (sc *Scan) Warnings() []Warning {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return append([]Warning(nil), sc.warnings...)
}

// Files returns a lazy sequence of absolute audio file paths. The walk stops
// when ctx is cancelled or the consumer stops iterating.
func (sc *Scan) Files(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		sc.mu.Lock()
		sc.warnings = nil
		sc.mu.Unlock()

		w := &walker{
			scan:    sc,
			ctx:     ctx,
			yield:   yield,
			visited: map[string]struct{}{sc.canonicalRoot: {}},
			seen:    make(map[string]struct{}),
		}
		w.walk(sc.root, sc.canonicalRoot)
	}
}

func (sc *Scan) warn(path string, err error) {
	warning := Warning{Path: path, Err: err}
	sc.mu.Lock()
	sc.warnings = append(sc.warnings, warning)
	sc.mu.Unlock()
	if errors.Is(err, ErrResourceFork) {
		logging.WarnWithContext(sc.scanner.logger, "resource fork skipped", "scan_resource_fork",
			logging.String("entry_path", path),
			logging.String(logging.FieldErrorHint, "remove ._ files left by macOS copies"),
			logging.String(logging.FieldImpact, "entry excluded from this run"),
		)
	} else {
		logging.WarnWithContext(sc.scanner.logger, "directory entry unreadable", "scan_entry_unreadable",
			logging.String("entry_path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions and dangling symlinks"),
			logging.String(logging.FieldImpact, "entry excluded from this run"),
		)
	}
	if sc.scanner.onWarning != nil {
		sc.scanner.onWarning(warning)
	}
}

type walker struct {
	scan  *Scan
	ctx   context.Context
	yield func(string) bool
	// visited holds canonical directories already descended into.
	visited map[string]struct{}
	// seen holds canonical files already yielded.
	seen map[string]struct{}
}

// walk descends into dir, whose symlink-free location is canonical. It returns
// false once the walk must stop.
func (w *walker) walk(dir, canonical string) bool {
	if w.ctx.Err() != nil {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.scan.warn(dir, err)
	}
	s := w.scan.scanner
	for _, entry := range entries {
		if w.ctx.Err() != nil {
			return false
		}
		name := entry.Name()
		if s.skipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		entryCanonical := filepath.Join(canonical, name)

		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				w.scan.warn(path, err)
				continue
			}
			if info.IsDir() && !s.followSymlinks {
				continue
			}
			if !info.IsDir() && !(info.Mode().IsRegular() && s.Matches(name)) {
				continue
			}
			if !info.IsDir() && strings.HasPrefix(name, "._") {
				w.scan.warn(path, ErrResourceFork)
				continue
			}
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				w.scan.warn(path, err)
				continue
			}
			if info.IsDir() {
				if !w.descend(path, resolved) {
					return false
				}
				continue
			}
			if !w.emit(path, resolved) {
				return false
			}
			continue
		}

		if entry.IsDir() {
			if !w.descend(path, entryCanonical) {
				return false
			}
			continue
		}
		if !entry.Type().IsRegular() || !s.Matches(name) {
			continue
		}
		if strings.HasPrefix(name, "._") {
			w.scan.warn(path, ErrResourceFork)
			continue
		}
		if !w.emit(path, entryCanonical) {
			return false
		}
	}
	return true
}

func (w *walker) descend(path, canonical string) bool {
	if _, ok := w.visited[canonical]; ok {
		return true
	}
	w.visited[canonical] = struct{}{}
	return w.walk(path, canonical)
}

func (w *walker) emit(path, canonical string) bool {
	if _, ok := w.seen[canonical]; ok {
		return true
	}
	w.seen[canonical] = struct{}{}
	return w.yield(path)
}
