package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/photoshare-api/internal/model"
)

// ErrTagNotFound is returned when a tag cannot be found in the DB.
var ErrTagNotFound = errors.New("tag not found")

// TagRepo encapsulates queries on the `tags` table.
type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db}
}

// List returns tags ordered by id with offset/limit pagination.
func (r *TagRepo) List(ctx context.Context, offset, limit int) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches one tag.
func (r *TagRepo) GetByID(ctx context.Context, id uint64) (model.Tag, error) {
	var t model.Tag
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM tags WHERE id = ?", id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, ErrTagNotFound
	}
	return t, err
}

// Create inserts a tag; a duplicate name yields ErrConflict.
func (r *TagRepo) Create(ctx context.Context, name string) (model.Tag, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if isDuplicate(err) {
			return model.Tag{}, ErrConflict
		}
		return model.Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, err
	}
	return model.Tag{ID: uint64(id), Name: name}, nil
}

// Rename changes a tag's name.
func (r *TagRepo) Rename(ctx context.Context, id uint64, name string) (model.Tag, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Tag{}, err
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE tags SET name = ? WHERE id = ?", name, id); err != nil {
		if isDuplicate(err) {
			return model.Tag{}, ErrConflict
		}
		return model.Tag{}, err
	}
	return model.Tag{ID: id, Name: name}, nil
}

// Delete removes a tag and, through ON DELETE CASCADE, its image links.
func (r *TagRepo) Delete(ctx context.Context, id uint64) (model.Tag, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Tag{}, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id); err != nil {
		return model.Tag{}, err
	}
	return t, nil
}
