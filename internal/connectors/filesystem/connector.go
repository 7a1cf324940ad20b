// Package filesystem provides the vault corpus source: a directory tree
// of markdown and plain-text notes enumerated and fetched by
// vault-relative path.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driven"
	"github.com/vaultika/vaultika-cli/internal/logger"
)

// Ensure Vault implements the interface.
var _ driven.CorpusSource = (*Vault)(nil)

// DefaultExtensions are the note file types indexed by default.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// watchDebounce coalesces bursts of filesystem events into one signal.
const watchDebounce = 500 * time.Millisecond

// Vault is a corpus source over a local note directory.
// Hidden directories (".obsidian", ".git", ...) are skipped.
type Vault struct {
	root       string
	extensions map[string]bool
}

// Option configures the vault.
type Option func(*Vault)

// WithExtensions overrides the indexed file extensions.
func WithExtensions(exts []string) Option {
	return func(v *Vault) {
		if len(exts) == 0 {
			return
		}
		v.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			v.extensions[strings.ToLower(ext)] = true
		}
	}
}

// New creates a vault source rooted at the given directory.
func New(root string, opts ...Option) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat vault path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory: %w", abs, domain.ErrInvalidInput)
	}

	v := &Vault{root: abs}
	WithExtensions(DefaultExtensions)(v)
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Root returns the absolute vault root.
func (v *Vault) Root() string {
	return v.root
}

// List enumerates all note files with their modification times, in
// ascending path order. Paths are vault-relative with forward slashes.
func (v *Vault) List(_ context.Context) ([]domain.DocumentInfo, error) {
	var listing []domain.DocumentInfo

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A vanished or unreadable subtree is not fatal to listing.
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !v.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		listing = append(listing, domain.DocumentInfo{
			Path:       v.relative(path),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	sort.Slice(listing, func(i, j int) bool { return listing[i].Path < listing[j].Path })
	return listing, nil
}

// Fetch returns the full text of a note. A path that disappeared or
// became unreadable since List surfaces domain.ErrCorpusRead; the caller
// skips the document and continues.
func (v *Vault) Fetch(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(v.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w: %v", path, domain.ErrCorpusRead, err)
	}
	return string(data), nil
}

// Watch emits a debounced signal whenever a note file changes anywhere
// under the vault. The channel closes when ctx is cancelled.
func (v *Vault) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// fsnotify is not recursive; watch every directory in the tree.
	err = filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != v.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch vault: %w", err)
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(signals)

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// New directories must be added to the watch set.
				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				if !v.relevant(event) {
					continue
				}
				logger.Debug("Vault change: %s %s", event.Op, event.Name)
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
					timerC = timer.C
				} else {
					timer.Reset(watchDebounce)
				}

			case <-timerC:
				timer = nil
				timerC = nil
				select {
				case signals <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return signals, nil
}

// Close releases resources.
func (v *Vault) Close() error {
	return nil
}

// relevant reports whether an event concerns an indexed note file.
func (v *Vault) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return false
	}
	return v.extensions[strings.ToLower(filepath.Ext(event.Name))]
}

// relative converts an absolute path to a vault-relative slash path.
func (v *Vault) relative(path string) string {
	rel, err := filepath.Rel(v.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
