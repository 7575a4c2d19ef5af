package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/log"
)

// Compile-time check that IndexedLoader implements dataset.InfoLoader.
var _ dataset.InfoLoader = (*IndexedLoader)(nil)

// IndexedLoader serves info from the index while the info file's mtime
// matches the indexed one, and refreshes the row through next otherwise.
type IndexedLoader struct {
	repo     *InfoRepository
	next     dataset.InfoLoader
	infoFile string
	now      func() time.Time
}

// NewIndexedLoader wraps next. infoFile names the file whose mtime is tracked.
func NewIndexedLoader(repo *InfoRepository, next dataset.InfoLoader, infoFile string) *IndexedLoader {
	return &IndexedLoader{
		repo:     repo,
		next:     next,
		infoFile: infoFile,
		now:      time.Now,
	}
}

// LoadInfo implements dataset.InfoLoader.
func (l *IndexedLoader) LoadInfo(ctx context.Context, req dataset.LoadRequest) (dataset.Info, error) {
	if req.Path == "" {
		return l.next.LoadInfo(ctx, req)
	}

	stat, err := os.Stat(filepath.Join(req.Path, l.infoFile))
	if err != nil {
		// Let the underlying loader report the missing file.
		return l.next.LoadInfo(ctx, req)
	}
	root, name := filepath.Dir(req.Path), filepath.Base(req.Path)

	if !req.Reload {
		entry, err := l.repo.Find(ctx, root, name)
		switch {
		case err == nil && entry.SourceModTime.Equal(stat.ModTime()):
			log.Debug(log.CatDB, "index hit", "dataset", req.Name)
			return entry.Info, nil
		case err == nil:
			log.Debug(log.CatDB, "index stale", "dataset", req.Name)
		case !errors.Is(err, ErrEntryNotFound):
			log.Warn(log.CatDB, "index lookup failed", "dataset", req.Name, "error", err)
		}
	}

	info, err := l.next.LoadInfo(ctx, req)
	if err != nil {
		return info, err
	}

	entry := Entry{
		Root:          root,
		Name:          name,
		Info:          info,
		SourceModTime: stat.ModTime(),
		IndexedAt:     l.now(),
	}
	if err := l.repo.Save(ctx, entry); err != nil {
		log.Warn(log.CatDB, "index write failed", "dataset", req.Name, "error", err)
	}
	return info, nil
}
