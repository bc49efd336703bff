package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".html"

// Loader reads template markup from a file system. Names are slash separated
// and relative to the root; "page" resolves to "page.html".
type Loader struct {
	fsys    fs.FS
	root    string
	ext     string
	watcher *Watcher
}

// Option configures a Loader.
type Option func(*Loader)

// WithExtension overrides the extension appended to bare names.
func WithExtension(ext string) Option {
	return func(l *Loader) {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		l.ext = ext
	}
}

// WithWatcher registers every file the loader reads with watcher. It only has
// an effect on loaders created by Dir, since fsnotify needs real paths.
func WithWatcher(watcher *Watcher) Option {
	return func(l *Loader) {
		l.watcher = watcher
	}
}

// New reads templates from fsys.
func New(fsys fs.FS, options ...Option) *Loader {
	l := &Loader{fsys: fsys, ext: DefaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Dir reads templates from the directory root.
func Dir(root string, options ...Option) *Loader {
	l := New(os.DirFS(root), options...)
	l.root = root
	return l
}

// File returns the file name a template name resolves to.
func (l *Loader) File(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(name)), "/")
	if l.ext != "" && path.Ext(name) == "" {
		name += l.ext
	}
	return name
}

// Load returns the markup of the named template.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("loader: template name is required")
	}
	if l.fsys == nil {
		return "", errors.New("loader: fs is nil")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	file := l.File(name)
	data, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return "", fmt.Errorf("loader: read %s: %w", file, err)
	}
	if l.watcher != nil && l.root != "" {
		if err := l.watcher.Add(filepath.Join(l.root, filepath.FromSlash(file))); err != nil {
			return "", fmt.Errorf("loader: watch %s: %w", file, err)
		}
	}
	return string(data), nil
}

// Names walks the file system and returns the names of every template file,
// without extension, sorted.
func (l *Loader) Names() ([]string, error) {
	if l.fsys == nil {
		return nil, nil
	}
	var names []string
	err := fs.WalkDir(l.fsys, ".", func(file string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if l.ext != "" && path.Ext(file) != l.ext {
			return nil
		}
		names = append(names, strings.TrimSuffix(file, l.ext))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walk: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
