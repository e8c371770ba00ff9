package service

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// UploadedAsset identifies a file stored by the media host.
type UploadedAsset struct {
	URL      string
	PublicID string
}

// MediaHost stores images and renders transformation URLs for them.
type MediaHost interface {
	Upload(ctx context.Context, r io.Reader, publicID string) (UploadedAsset, error)
	Destroy(ctx context.Context, publicID string) error
	URL(publicID string, t Transform) (string, error)
}

// Transform describes a delivery-time transformation.  Zero fields are
// left out of the rendered transformation string.
type Transform struct {
	Width       int    `json:"width" query:"width" validate:"gte=0,lte=5000"`
	Height      int    `json:"height" query:"height" validate:"gte=0,lte=5000"`
	Crop        string `json:"crop" query:"crop" validate:"omitempty,oneof=scale fit limit mfit fill lfill pad lpad mpad crop thumb"`
	Gravity     string `json:"gravity" query:"gravity" validate:"omitempty,cldtoken"`
	Quality     string `json:"quality" query:"quality" validate:"omitempty,cldtoken"`
	FetchFormat string `json:"fetch_format" query:"fetch_format" validate:"omitempty,alphanum"`
	Effect      string `json:"effect" query:"effect" validate:"omitempty,cldtoken"`
	Angle       int    `json:"angle" query:"angle" validate:"gte=-360,lte=360"`
}

// IsZero reports whether no transformation was requested.
func (t Transform) IsZero() bool { return t == Transform{} }

// String renders t in Cloudinary's comma separated component syntax,
// for example "w_300,h_200,c_fill".
func (t Transform) String() string {
	var parts []string
	add := func(key, val string) {
		if val != "" {
			parts = append(parts, key+"_"+val)
		}
	}
	if t.Width > 0 {
		add("w", strconv.Itoa(t.Width))
	}
	if t.Height > 0 {
		add("h", strconv.Itoa(t.Height))
	}
	add("c", t.Crop)
	add("g", t.Gravity)
	add("q", t.Quality)
	add("f", t.FetchFormat)
	add("e", t.Effect)
	if t.Angle != 0 {
		add("a", strconv.Itoa(t.Angle))
	}
	return strings.Join(parts, ",")
}
