package fonts

import (
	"fmt"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
)

// maxFontFileSize guards against reading arbitrary large files as fonts.
const maxFontFileSize = 64 << 20

// Loader resolves font paths into faces.
//
// A caching Loader keeps parsed fonts keyed by resolved path and is safe for
// concurrent use; parsed fonts are read-only and faces are created fresh for
// each call, so callers never share a face between renders.
type Loader struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font // nil when caching is disabled
}

// NewLoader returns a Loader that reads and parses the font on every call.
func NewLoader() *Loader {
	return &Loader{}
}

// NewCachingLoader returns a Loader that parses each resolved font file once.
func NewCachingLoader() *Loader {
	return &Loader{fonts: make(map[string]*opentype.Font)}
}

// Face returns a face for path at size pixels.
//
// The returned face is never nil unless the built-in fallback itself fails to
// parse. When the configured font could not be used, the fallback face is
// returned together with a RESOURCE_MISSING error explaining why; callers
// log the error and continue. An empty path selects the fallback silently.
func (l *Loader) Face(path string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "font size must be positive, got %g", size)
	}
	if path == "" {
		face, err := Fallback(size)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse built-in font")
		}
		return face, nil
	}

	f, loadErr := l.load(path)
	if loadErr == nil {
		face, err := newFace(f, size)
		if err == nil {
			return face, nil
		}
		loadErr = errors.Wrap(errors.ErrCodeResourceMissing, err, "create face for %s", path)
	}

	face, err := Fallback(size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse built-in font")
	}
	return face, loadErr
}

// Resolve maps a configured font path to a file on disk. Paths that do not
// exist are looked up by name in the system font directories.
func Resolve(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	found, err := findfont.Find(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResourceMissing, err, "font %s not found", path)
	}
	return found, nil
}

func (l *Loader) load(path string) (*opentype.Font, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	if l.fonts != nil {
		l.mu.RLock()
		f, ok := l.fonts[resolved]
		l.mu.RUnlock()
		if ok {
			return f, nil
		}
	}

	f, err := parseFile(resolved)
	if err != nil {
		return nil, err
	}

	if l.fonts != nil {
		l.mu.Lock()
		l.fonts[resolved] = f
		l.mu.Unlock()
	}
	return f, nil
}

func parseFile(path string) (*opentype.Font, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceMissing, err, "stat font %s", path)
	}
	if info.Size() > maxFontFileSize {
		return nil, errors.New(errors.ErrCodeResourceMissing, "font %s too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceMissing, err, "read font %s", path)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceMissing, fmt.Errorf("parse: %w", err), "font %s is not a TrueType/OpenType file", path)
	}
	return f, nil
}

// Cached reports how many parsed fonts the loader holds.
func (l *Loader) Cached() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fonts)
}
