package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Document is a parsed but not yet validated content file.
type Document struct {
	ID          string // path relative to the collection directory
	Path        string // path relative to the content root
	FrontMatter map[string]any
	Body        []byte
	Checksum    string
}

// Entry pairs a validated record with its source document.
type Entry[T any] struct {
	Doc    Document
	Record T
}

// Rejection records why a document was left out of its collection.
type Rejection struct {
	ID   string
	Path string
	Err  error
}

// Collection is the outcome of loading one content directory.
type Collection[T any] struct {
	Name     string
	Entries  []Entry[T]
	Rejected []Rejection
}

// Records returns the validated records in discovery order.
func (c *Collection[T]) Records() []T {
	out := make([]T, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Record)
	}
	return out
}

// ValidateFunc validates one document's front-matter.
type ValidateFunc[T any] func(raw map[string]any, id string) (T, error)

// Loader discovers and parses Markdown documents in a filesystem.
type Loader struct {
	fsys       fs.FS
	extensions []string
	workers    int
	images     *ImageResolver
	log        *logrus.Entry
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithWorkers bounds how many documents are processed at once.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the logger used for per-document diagnostics.
func WithLogger(log *logrus.Entry) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithoutImageResolution keeps ogImage strings as written.
func WithoutImageResolution() LoaderOption {
	return func(l *Loader) {
		l.images = nil
	}
}

// NewLoader returns a Loader over fsys that picks up .md and .mdx files.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:       fsys,
		extensions: []string{".md", ".mdx"},
		workers:    runtime.GOMAXPROCS(0),
		images:     NewImageResolver(fsys),
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover lists the content files under dir, sorted by path. A missing
// directory is an empty collection.
func (l *Loader) Discover(ctx context.Context, dir string) ([]string, error) {
	dir = path.Clean(dir)
	var paths []string
	err := fs.WalkDir(l.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), "_") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), "_") || !l.matches(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) matches(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range l.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Read loads and parses the document at p, identified relative to dir.
func (l *Loader) Read(dir, p string) (Document, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", p, err)
	}
	meta, body, err := ParseDocument(data)
	if err != nil {
		return Document{}, err
	}
	id := relID(dir, p)
	sum := sha256.Sum256(data)
	l.images.resolveOGImage(meta, p)
	return Document{
		ID:          id,
		Path:        p,
		FrontMatter: meta,
		Body:        body,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// LoadCollection reads and validates every document under dir in parallel.
// Documents are independent; a bad one is rejected without affecting the
// rest. Only discovery failures and cancellation abort the load.
func LoadCollection[T any](ctx context.Context, l *Loader, dir string, validate ValidateFunc[T]) (*Collection[T], error) {
	paths, err := l.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}

	type result struct {
		entry    Entry[T]
		rejected *Rejection
	}
	results := make([]result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := l.Read(dir, p)
			if err != nil {
				results[i].rejected = &Rejection{ID: relID(dir, p), Path: p, Err: err}
				return nil
			}
			record, err := validate(doc.FrontMatter, doc.ID)
			if err != nil {
				results[i].rejected = &Rejection{ID: doc.ID, Path: p, Err: err}
				return nil
			}
			results[i].entry = Entry[T]{Doc: doc, Record: record}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	c := &Collection[T]{Name: path.Base(path.Clean(dir))}
	for _, r := range results {
		if r.rejected != nil {
			c.Rejected = append(c.Rejected, *r.rejected)
			l.log.WithFields(logrus.Fields{
				"collection": c.Name,
				"document":   r.rejected.Path,
				"issues":     len(Issues(r.rejected.Err)),
			}).Warnf("document rejected: %v", r.rejected.Err)
			continue
		}
		c.Entries = append(c.Entries, r.entry)
	}
	l.log.WithFields(logrus.Fields{
		"collection": c.Name,
		"valid":      len(c.Entries),
		"rejected":   len(c.Rejected),
	}).Debug("collection loaded")
	return c, nil
}

func relID(dir, p string) string {
	dir = path.Clean(dir)
	if dir == "." {
		return p
	}
	return strings.TrimPrefix(p, dir+"/")
}
