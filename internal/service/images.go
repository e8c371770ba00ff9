package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iliyamo/photoshare-api/internal/logger"
	"github.com/iliyamo/photoshare-api/internal/model"
	"github.com/iliyamo/photoshare-api/internal/repository"
)

// ImageStore is the persistence ImageService needs.
type ImageStore interface {
	Create(ctx context.Context, img *model.Image, tagNames []string) error
	GetByID(ctx context.Context, id uint64) (*model.Image, error)
	List(ctx context.Context, offset, limit int) ([]*model.Image, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Image, error)
	Update(ctx context.Context, id, userID uint64, description string, tagNames []string) error
	SetEditedURL(ctx context.Context, id uint64, url string) error
	SetQRCodeURL(ctx context.Context, id uint64, url string) error
	Delete(ctx context.Context, id uint64) error
}

// ImageService coordinates the media host and the image store.
type ImageService struct {
	images ImageStore
	host   MediaHost
}

func NewImageService(images ImageStore, host MediaHost) *ImageService {
	return &ImageService{images: images, host: host}
}

// Upload stores file on the media host and records it for owner.  The
// hosted asset is removed again when the database write fails.
func (s *ImageService) Upload(ctx context.Context, owner model.User, file io.ReadSeeker, description, rawTags string) (*model.Image, error) {
	tags, err := ParseTags(rawTags)
	if err != nil {
		return nil, err
	}
	desc, err := cleanDescription(description)
	if err != nil {
		return nil, err
	}
	if _, err := SniffImage(file); err != nil {
		return nil, err
	}
	asset, err := s.host.Upload(ctx, file, uuid.NewString())
	if err != nil {
		return nil, err
	}
	img := &model.Image{
		UserID:      owner.ID,
		URL:         asset.URL,
		PublicID:    asset.PublicID,
		Description: desc,
	}
	if err := s.images.Create(ctx, img, tags); err != nil {
		if derr := s.host.Destroy(ctx, asset.PublicID); derr != nil {
			logger.Log.Warn("orphaned hosted asset", "public_id", asset.PublicID, "error", derr)
		}
		return nil, fmt.Errorf("store image: %w", err)
	}
	return img, nil
}

// UploadAvatar stores an avatar for u and returns its URL.  Re-uploading
// overwrites the previous avatar.
func (s *ImageService) UploadAvatar(ctx context.Context, u model.User, file io.ReadSeeker) (string, error) {
	if _, err := SniffImage(file); err != nil {
		return "", err
	}
	asset, err := s.host.Upload(ctx, file, fmt.Sprintf("avatar_%d", u.ID))
	if err != nil {
		return "", err
	}
	return asset.URL, nil
}

// Get returns one image.
func (s *ImageService) Get(ctx context.Context, id uint64) (*model.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if errors.Is(err, repository.ErrImageNotFound) {
		return nil, ErrNotFound
	}
	return img, err
}

func (s *ImageService) List(ctx context.Context, offset, limit int) ([]*model.Image, error) {
	return s.images.List(ctx, offset, limit)
}

func (s *ImageService) ListByUser(ctx context.Context, userID uint64) ([]*model.Image, error) {
	return s.images.ListByUser(ctx, userID)
}

// Update rewrites description and tags of an image owned by actor.
func (s *ImageService) Update(ctx context.Context, actor model.User, id uint64, description, rawTags string) (*model.Image, error) {
	tags, err := ParseTags(rawTags)
	if err != nil {
		return nil, err
	}
	desc, err := cleanDescription(description)
	if err != nil {
		return nil, err
	}
	if err := s.images.Update(ctx, id, actor.ID, desc, tags); err != nil {
		switch {
		case errors.Is(err, repository.ErrImageNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrForbidden):
			return nil, ErrForbidden
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an image.  Owners may delete their own images, admins
// may delete any.
func (s *ImageService) Delete(ctx context.Context, actor model.User, id uint64) error {
	img, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if img.UserID != actor.ID {
		if err := CheckRole(actor, model.RoleAdmin); err != nil {
			return err
		}
	}
	if err := s.images.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.host.Destroy(ctx, img.PublicID); err != nil {
		logger.Log.Warn("hosted asset not destroyed", "public_id", img.PublicID, "error", err)
	}
	return nil
}

// Transform renders t for an image owned by actor and remembers the
// result as the image's edited URL.
func (s *ImageService) Transform(ctx context.Context, actor model.User, id uint64, t Transform) (*model.Image, error) {
	img, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	url, err := s.host.URL(img.PublicID, t)
	if err != nil {
		return nil, err
	}
	if err := s.images.SetEditedURL(ctx, id, url); err != nil {
		return nil, err
	}
	img.EditedURL = url
	return img, nil
}

// TransformURL renders t for any hosted asset without persisting it.
func (s *ImageService) TransformURL(publicID string, t Transform) (string, error) {
	if publicID == "" {
		return "", ErrNotFound
	}
	return s.host.URL(publicID, t)
}

// QRCode hosts a QR code pointing at the edited URL of the image, or at
// the original when no transformation was stored yet.
func (s *ImageService) QRCode(ctx context.Context, actor model.User, id uint64) (*model.Image, error) {
	img, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	target := img.EditedURL
	if target == "" {
		target = img.URL
	}
	png, err := GenerateQRCode(target)
	if err != nil {
		return nil, err
	}
	asset, err := s.host.Upload(ctx, bytes.NewReader(png), fmt.Sprintf("qr_%d", img.ID))
	if err != nil {
		return nil, err
	}
	if err := s.images.SetQRCodeURL(ctx, id, asset.URL); err != nil {
		return nil, err
	}
	img.QRCodeURL = asset.URL
	return img, nil
}

func (s *ImageService) owned(ctx context.Context, actor model.User, id uint64) (*model.Image, error) {
	img, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if img.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return img, nil
}

func cleanDescription(s string) (string, error) {
	desc := SanitizeText(s)
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", ErrDescriptionLength
	}
	return desc, nil
}
