package profile

import (
	"errors"
	"strings"

	"bookreview/internal/user"
)

var (
	ErrEmptyPhoto       = errors.New("photo is empty")
	ErrUnsupportedPhoto = errors.New("unsupported photo type")
)

const (
	MaxNameLength = 100

	// photoPrefix is both the object key prefix and the public URL path.
	photoPrefix = "photos/"
)

// AllowedPhotoTypes are the sniffed content types accepted for upload.
var AllowedPhotoTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Stats struct {
	LibraryCount  int     `json:"library_count"`
	ReviewsCount  int     `json:"reviews_count"`
	AverageRating float64 `json:"average_rating"`
}

type Profile struct {
	User  user.View `json:"user"`
	Stats Stats     `json:"stats"`
}

type UpdateCommand struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Surname *string `json:"surname" validate:"omitempty,max=100"`
}

// Normalize trims the provided fields in place.
func (c *UpdateCommand) Normalize() {
	if c.Name != nil {
		v := strings.TrimSpace(*c.Name)
		c.Name = &v
	}
	if c.Surname != nil {
		v := strings.TrimSpace(*c.Surname)
		c.Surname = &v
	}
}

func (c *UpdateCommand) ToMap() map[string]any {
	updates := make(map[string]any)
	if c.Name != nil {
		updates["name"] = *c.Name
	}
	if c.Surname != nil {
		updates["surname"] = *c.Surname
	}
	return updates
}
