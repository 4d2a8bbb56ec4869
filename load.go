package pubsite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eringen/pubsite/content"
)

// ErrDuplicateSlug rejects a document whose slug is already taken by another
// document of the same collection.
var ErrDuplicateSlug = errors.New("duplicate slug")

// LoadResult is the validated content of one load.
type LoadResult struct {
	Posts   []StoredPost
	Authors []content.Author
	Report  Report
}

// LoadContent validates the blog and authors collections of fsys. Rejected
// documents are reported, never returned as an error; only unreadable
// directories and cancellation fail the load.
func LoadContent(ctx context.Context, fsys fs.FS, cfg SiteConfig, log *logrus.Logger) (LoadResult, error) {
	cfg.setDefaults()
	if log == nil {
		log = logrus.StandardLogger()
	}
	start := time.Now()

	loader := content.NewLoader(fsys, content.WithLogger(log.WithField("component", "loader")))
	validator := content.NewValidator(cfg.ContentDefaults())

	blog, err := content.LoadCollection(ctx, loader, cfg.BlogDir, validator.BlogPost)
	if err != nil {
		return LoadResult{}, err
	}
	authors, err := content.LoadCollection(ctx, loader, cfg.AuthorsDir, validator.Author)
	if err != nil {
		return LoadResult{}, err
	}

	postEntries, postDups := uniqueSlugs(blog.Entries, func(p content.BlogPost) string { return p.Slug })
	authorEntries, authorDups := uniqueSlugs(authors.Entries, func(a content.Author) string { return a.Slug })
	for _, dup := range append(postDups, authorDups...) {
		log.WithField("document", dup.Path).Warnf("document rejected: %v", dup.Err)
	}

	res := LoadResult{
		Posts:   make([]StoredPost, 0, len(postEntries)),
		Authors: make([]content.Author, 0, len(authorEntries)),
	}
	for _, e := range postEntries {
		p := e.Record
		p.FilePath = sourcePath(cfg.ContentDir, e.Doc.Path)
		p.Body = string(e.Doc.Body)
		res.Posts = append(res.Posts, StoredPost{BlogPost: p, Checksum: e.Doc.Checksum})
	}
	for _, e := range authorEntries {
		res.Authors = append(res.Authors, e.Record)
	}

	res.Report = Report{
		LoadedAt: start,
		Duration: time.Since(start),
		Collections: []CollectionReport{
			newCollectionReport(blog.Name, len(postEntries), append(blog.Rejected, postDups...)),
			newCollectionReport(authors.Name, len(authorEntries), append(authors.Rejected, authorDups...)),
		},
	}
	return res, nil
}

// uniqueSlugs keeps the first entry of every slug in discovery order and
// rejects the rest. Documents whose name yields no slug are rejected too.
func uniqueSlugs[T any](entries []content.Entry[T], slug func(T) string) ([]content.Entry[T], []content.Rejection) {
	owners := make(map[string]string, len(entries))
	kept := make([]content.Entry[T], 0, len(entries))
	var rejected []content.Rejection
	for _, e := range entries {
		s := slug(e.Record)
		if s == "" {
			rejected = append(rejected, content.Rejection{
				ID:   e.Doc.ID,
				Path: e.Doc.Path,
				Err: &content.ValidationError{ID: e.Doc.ID, Issues: []content.Issue{{
					Field:   "slug",
					Kind:    content.ConstraintViolation,
					Message: "file name has no letters or digits to build a URL from",
				}}},
			})
			continue
		}
		if owner, taken := owners[s]; taken {
			rejected = append(rejected, content.Rejection{
				ID:   e.Doc.ID,
				Path: e.Doc.Path,
				Err:  fmt.Errorf("%w: %q is already used by %s", ErrDuplicateSlug, s, owner),
			})
			continue
		}
		owners[s] = e.Doc.ID
		kept = append(kept, e)
	}
	return kept, rejected
}

// sourcePath returns the repository path of a document for edit links.
func sourcePath(contentDir, docPath string) string {
	if contentDir == "" || filepath.IsAbs(contentDir) {
		return docPath
	}
	return path.Join(filepath.ToSlash(contentDir), docPath)
}
