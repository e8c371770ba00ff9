// Package repository contains data access logic separated from HTTP handlers.
// This file covers images and their tag links.  Tags are created on demand
// by name when an image is stored, and the `image_tags` join table is
// rewritten on every update.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/photoshare-api/internal/model"
)

// ErrImageNotFound is returned when an image cannot be found in the DB.
var ErrImageNotFound = errors.New("image not found")

// ImageRepo encapsulates all database queries related to images.
type ImageRepo struct {
	db *sql.DB
}

func NewImageRepo(db *sql.DB) *ImageRepo {
	return &ImageRepo{db: db}
}

const imageColumns = "id, user_id, url, public_id, edited_url, qr_code_url, description, created_at, updated_at"

func scanImage(s rowScanner) (*model.Image, error) {
	var (
		img    model.Image
		edited sql.NullString
		qr     sql.NullString
	)
	if err := s.Scan(&img.ID, &img.UserID, &img.URL, &img.PublicID, &edited, &qr,
		&img.Description, &img.CreatedAt, &img.UpdatedAt); err != nil {
		return nil, err
	}
	img.EditedURL = edited.String
	img.QRCodeURL = qr.String
	img.Tags = []model.Tag{}
	return &img, nil
}

// Create inserts the image and links it to tagNames, creating missing
// tags.  Everything happens in one transaction.
func (r *ImageRepo) Create(ctx context.Context, img *model.Image, tagNames []string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO images (user_id, url, public_id, description) VALUES (?, ?, ?, ?)",
		img.UserID, img.URL, img.PublicID, img.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	img.ID = uint64(id)

	tags, err := linkTags(ctx, tx, img.ID, tagNames)
	if err != nil {
		return err
	}
	img.Tags = tags
	return nil
}

// linkTags ensures every name exists in `tags` and links it to imageID.
// Names are compared byte for byte, as the column's binary collation does;
// a name linked twice yields ErrConflict.
func linkTags(ctx context.Context, tx *sql.Tx, imageID uint64, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, "INSERT IGNORE INTO tags (name) VALUES (?)", name); err != nil {
			return nil, err
		}
		t := model.Tag{Name: name}
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&t.ID); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO image_tags (image_id, tag_id) VALUES (?, ?)", imageID, t.ID); err != nil {
			if isDuplicate(err) {
				return nil, ErrConflict
			}
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// GetByID fetches an image with its tags.
func (r *ImageRepo) GetByID(ctx context.Context, id uint64) (*model.Image, error) {
	img, err := scanImage(r.db.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	if err := r.attachTags(ctx, []*model.Image{img}); err != nil {
		return nil, err
	}
	return img, nil
}

// List returns images ordered by id with offset/limit pagination.
func (r *ImageRepo) List(ctx context.Context, offset, limit int) ([]*model.Image, error) {
	return r.query(ctx, "SELECT "+imageColumns+" FROM images ORDER BY id LIMIT ? OFFSET ?", limit, offset)
}

// ListByUser returns every image owned by userID.
func (r *ImageRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Image, error) {
	return r.query(ctx, "SELECT "+imageColumns+" FROM images WHERE user_id = ? ORDER BY id", userID)
}

// CountByUser returns how many images userID has uploaded.
func (r *ImageRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM images WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

func (r *ImageRepo) query(ctx context.Context, q string, args ...any) ([]*model.Image, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachTags loads the tags of all images with a single query.
func (r *ImageRepo) attachTags(ctx context.Context, images []*model.Image) error {
	if len(images) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Image, len(images))
	args := make([]any, 0, len(images))
	for _, img := range images {
		byID[img.ID] = img
		args = append(args, img.ID)
	}
	q := `SELECT it.image_id, t.id, t.name
	      FROM image_tags it JOIN tags t ON t.id = it.tag_id
	      WHERE it.image_id IN (?` + strings.Repeat(",?", len(args)-1) + `)
	      ORDER BY it.image_id, t.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			imageID uint64
			t       model.Tag
		)
		if err := rows.Scan(&imageID, &t.ID, &t.Name); err != nil {
			return err
		}
		if img, ok := byID[imageID]; ok {
			img.Tags = append(img.Tags, t)
		}
	}
	return rows.Err()
}

// Update rewrites the description and the tag set of an image owned by
// userID.  It returns ErrImageNotFound when no such image exists for
// that owner.
func (r *ImageRepo) Update(ctx context.Context, id, userID uint64, description string, tagNames []string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var owner uint64
	if err = tx.QueryRowContext(ctx, "SELECT user_id FROM images WHERE id = ? FOR UPDATE", id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrImageNotFound
		}
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE images SET description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", description, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM image_tags WHERE image_id = ?", id); err != nil {
		return err
	}
	_, err = linkTags(ctx, tx, id, tagNames)
	return err
}

// SetEditedURL stores the URL of the last transformation.
func (r *ImageRepo) SetEditedURL(ctx context.Context, id uint64, url string) error {
	return r.setColumn(ctx, "edited_url", id, url)
}

// SetQRCodeURL stores the URL of the generated QR code.
func (r *ImageRepo) SetQRCodeURL(ctx context.Context, id uint64, url string) error {
	return r.setColumn(ctx, "qr_code_url", id, url)
}

func (r *ImageRepo) setColumn(ctx context.Context, column string, id uint64, value string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE images SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", value, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImageNotFound
	}
	return nil
}

// Delete removes an image.  Tag links and comments go with it through
// ON DELETE CASCADE.
func (r *ImageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImageNotFound
	}
	return nil
}
