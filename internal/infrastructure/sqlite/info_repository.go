package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrEntryNotFound is returned when no row exists for a dataset.
var ErrEntryNotFound = errors.New("index entry not found")

const infoColumns = `root, name, subject, collection_date, save_tags, n_trials, n_channels, source_mtime, indexed_at`

// InfoRepository reads and writes dataset_info rows.
type InfoRepository struct {
	db *sql.DB
}

func newInfoRepository(db *sql.DB) *InfoRepository {
	return &InfoRepository{db: db}
}

func scanInfo(scanner interface{ Scan(...any) error }) (*InfoModel, error) {
	var model InfoModel
	err := scanner.Scan(
		&model.Root, &model.Name, &model.Subject, &model.CollectionDate, &model.SaveTags,
		&model.NTrials, &model.NChannels, &model.SourceMTime, &model.IndexedAt,
	)
	return &model, err
}

// Save inserts or replaces the row for e.Root/e.Name.
func (r *InfoRepository) Save(ctx context.Context, e Entry) error {
	model, err := toInfoModel(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", e.Name, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO dataset_info (`+infoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (root, name) DO UPDATE SET
			subject = excluded.subject,
			collection_date = excluded.collection_date,
			save_tags = excluded.save_tags,
			n_trials = excluded.n_trials,
			n_channels = excluded.n_channels,
			source_mtime = excluded.source_mtime,
			indexed_at = excluded.indexed_at`,
		model.Root, model.Name, model.Subject, model.CollectionDate, model.SaveTags,
		model.NTrials, model.NChannels, model.SourceMTime, model.IndexedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", e.Name, err)
	}
	return nil
}

// Find returns the row for root/name or ErrEntryNotFound.
func (r *InfoRepository) Find(ctx context.Context, root, name string) (Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+infoColumns+` FROM dataset_info WHERE root = ? AND name = ?`, root, name)
	model, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s/%s: %w", root, name, ErrEntryNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to find entry %s: %w", name, err)
	}
	return model.toDomain()
}

// List returns every row under root ordered by name.
func (r *InfoRepository) List(ctx context.Context, root string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+infoColumns+` FROM dataset_info WHERE root = ? ORDER BY name`, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		model, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entry, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes the named rows under root. Missing rows are ignored.
func (r *InfoRepository) Delete(ctx context.Context, root string, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	args := make([]any, 0, len(names)+1)
	args = append(args, root)
	for _, name := range names {
		args = append(args, name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM dataset_info WHERE root = ? AND name IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// Prune removes rows under root whose name is not in keep.
func (r *InfoRepository) Prune(ctx context.Context, root string, keep []string) (int64, error) {
	query := `DELETE FROM dataset_info WHERE root = ?`
	args := []any{root}
	if len(keep) > 0 {
		query += ` AND name NOT IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(keep)), ", ") + `)`
		for _, name := range keep {
			args = append(args, name)
		}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune entries: %w", err)
	}
	return result.RowsAffected()
}
