package profiles

import (
	"errors"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AvatarBucket   = "profile-pictures"
	MaxAvatarBytes = 5 << 20

	MsgAvatarType = "Please select an image file"
	MsgAvatarSize = "File size must be less than 5MB"
)

var (
	ErrAvatarType = errors.New("not an image")
	ErrAvatarSize = errors.New("image exceeds 5MB")
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "bmp": true, "svg": true, "ico": true, "avif": true,
}

// Profile shares its ID with the auth user and is written with upsert semantics.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  *string   `json:"full_name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// AvatarUpdate is the upsert row that points a user's profile at a new avatar.
func AvatarUpdate(userID uuid.UUID, avatarURL string, now time.Time) Profile {
	return Profile{
		ID:        userID,
		AvatarURL: &avatarURL,
		UpdatedAt: now.UTC(),
	}
}

// ValidateAvatarType accepts any image/* media type.
func ValidateAvatarType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return ErrAvatarType
	}
	return nil
}

func ValidateAvatarSize(size int64) error {
	if size <= 0 || size > MaxAvatarBytes {
		return ErrAvatarSize
	}
	return nil
}

// AvatarObjectKey returns "<user_id>/avatar.<ext>" inside AvatarBucket. The
// extension comes from filename when it is a known image extension, else from
// the media subtype.
func AvatarObjectKey(userID uuid.UUID, filename, contentType string) (string, error) {
	if err := ValidateAvatarType(contentType); err != nil {
		return "", err
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !imageExts[ext] {
		mediaType, _, _ := mime.ParseMediaType(contentType)
		ext = strings.TrimPrefix(mediaType, "image/")
		ext = strings.TrimPrefix(ext, "x-")
		ext, _, _ = strings.Cut(ext, "+")
	}
	return userID.String() + "/avatar." + ext, nil
}

// PublicAvatarURL builds the public object URL for a key in AvatarBucket.
func PublicAvatarURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/storage/v1/object/public/" + AvatarBucket + "/" + key
}
