package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/photoshare-api/internal/model"
)

// ErrCommentNotFound is returned when a comment cannot be found in the DB.
var ErrCommentNotFound = errors.New("comment not found")

// CommentRepo encapsulates queries on the `comments` table.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const commentSelect = `SELECT c.id, c.image_id, c.user_id, u.username, c.comment, c.created_at, c.updated_at
	FROM comments c JOIN users u ON u.id = c.user_id`

func scanComment(s rowScanner) (model.Comment, error) {
	var c model.Comment
	err := s.Scan(&c.ID, &c.ImageID, &c.UserID, &c.Username, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListByImage returns the comments of an image, oldest first.
func (r *CommentRepo) ListByImage(ctx context.Context, imageID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+" WHERE c.image_id = ? ORDER BY c.id", imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches one comment.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, ErrCommentNotFound
	}
	return c, err
}

// Create inserts a comment by userID on imageID.
func (r *CommentRepo) Create(ctx context.Context, imageID, userID uint64, text string) (model.Comment, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (image_id, user_id, comment) VALUES (?, ?, ?)", imageID, userID, text)
	if err != nil {
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update changes the text of a comment written by userID.  Comments of
// other authors are reported as ErrCommentNotFound.
func (r *CommentRepo) Update(ctx context.Context, id, userID uint64, text string) (model.Comment, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if c.UserID != userID {
		return model.Comment{}, ErrCommentNotFound
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE comments SET comment = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", text, id); err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment regardless of author.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
