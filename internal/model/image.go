package model

import "time"

// MaxImageTags is the maximum number of tags one image can carry.
const MaxImageTags = 5

// Image is an uploaded picture hosted on the media service.  Each image
// belongs to one user and corresponds to a row in the `images` table;
// Tags is filled from the `image_tags` join table.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the image.
//  URL         – secure URL of the original upload.
//  PublicID    – identifier of the asset on the hosting service.
//  EditedURL   – URL of the last requested transformation, empty if none.
//  QRCodeURL   – URL of the generated QR code, empty if none.
//  Description – free text up to 100 characters.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Image struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"user_id"`
    URL         string    `json:"url"`
    PublicID    string    `json:"public_id"`
    EditedURL   string    `json:"edited_url,omitempty"`
    QRCodeURL   string    `json:"qr_code_url,omitempty"`
    Description string    `json:"description"`
    Tags        []Tag     `json:"tags"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}

// Tag is a unique label attached to images (`tags` table).
type Tag struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}

// Comment is a text note left by a user on an image (`comments` table).
type Comment struct {
    ID        uint64    `json:"id"`
    ImageID   uint64    `json:"image_id"`
    UserID    uint64    `json:"user_id"`
    Username  string    `json:"username"`
    Text      string    `json:"comment"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
