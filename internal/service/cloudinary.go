package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryHost is the MediaHost backed by a Cloudinary account.  Every
// asset is stored under one folder.
type CloudinaryHost struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryHost builds a client from explicit credentials.
func NewCloudinaryHost(cloudName, apiKey, apiSecret, folder string) (*CloudinaryHost, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are incomplete")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryHost{cld: cld, folder: folder}, nil
}

func (h *CloudinaryHost) Upload(ctx context.Context, r io.Reader, publicID string) (UploadedAsset, error) {
	resp, err := h.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  publicID,
		Folder:    h.folder,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return UploadedAsset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return UploadedAsset{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return UploadedAsset{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (h *CloudinaryHost) Destroy(ctx context.Context, publicID string) error {
	resp, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}

// URL renders the delivery URL of publicID with t applied.  No request
// is made to Cloudinary.
func (h *CloudinaryHost) URL(publicID string, t Transform) (string, error) {
	img, err := h.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary asset: %w", err)
	}
	img.Transformation = t.String()
	return img.String()
}
