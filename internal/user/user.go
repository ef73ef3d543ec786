package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

const (
	RoleUser = "USER"

	DefaultDisplayName = "User"
	DefaultAvatarURL   = "https://ui-avatars.com/api/?name=U"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View is the user as returned to its owner.
type View struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) View() View {
	return View{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Name:        u.Name,
		Surname:     u.Surname,
		DisplayName: DisplayName(u.Name, u.Surname),
		PhotoURL:    u.PhotoURL,
		AvatarURL:   AvatarURL(u.PhotoURL),
		CreatedAt:   u.CreatedAt,
	}
}

// DisplayName joins name and surname, falling back to DefaultDisplayName.
func DisplayName(name, surname string) string {
	full := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(surname))
	if full == "" {
		return DefaultDisplayName
	}
	return full
}

func AvatarURL(photoURL string) string {
	if strings.TrimSpace(photoURL) == "" {
		return DefaultAvatarURL
	}
	return photoURL
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
