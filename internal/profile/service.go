package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookreview/internal/platform/objectstore"
)

type Service struct {
	users         UserStore
	library       LibraryCounter
	reviews       ReviewStats
	photos        PhotoStore
	publicBaseURL string
	logger        *zap.Logger
}

func NewService(users UserStore, library LibraryCounter, reviews ReviewStats, photos PhotoStore, publicBaseURL string, logger *zap.Logger) *Service {
	return &Service{
		users:         users,
		library:       library,
		reviews:       reviews,
		photos:        photos,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (s *Service) GetOwnProfile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	stats, err := s.computeStats(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	return Profile{User: u.View(), Stats: stats}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, cmd UpdateCommand) (Profile, error) {
	cmd.Normalize()
	if err := s.users.UpdateProfile(ctx, userID, cmd.ToMap()); err != nil {
		return Profile{}, err
	}
	return s.GetOwnProfile(ctx, userID)
}

// UploadPhoto stores data as the user's new photo and removes the previous one.
func (s *Service) UploadPhoto(ctx context.Context, userID string, data []byte) (Profile, error) {
	if len(data) == 0 {
		return Profile{}, ErrEmptyPhoto
	}
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), AllowedPhotoTypes...) {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnsupportedPhoto, mtype.String())
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	key := photoPrefix + userID + "/" + uuid.NewString() + mtype.Extension()
	if err := s.photos.Put(ctx, key, mtype.String(), data); err != nil {
		return Profile{}, err
	}

	if err := s.users.SetPhotoURL(ctx, userID, s.photoURL(key)); err != nil {
		s.deleteObject(ctx, key)
		return Profile{}, err
	}

	if old, ok := s.keyFromURL(current.PhotoURL); ok {
		s.deleteObject(ctx, old)
	}

	return s.GetOwnProfile(ctx, userID)
}

// DeletePhoto clears the photo. It succeeds when there is none.
func (s *Service) DeletePhoto(ctx context.Context, userID string) (Profile, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	if current.PhotoURL != "" {
		if err := s.users.SetPhotoURL(ctx, userID, ""); err != nil {
			return Profile{}, err
		}
		if key, ok := s.keyFromURL(current.PhotoURL); ok {
			s.deleteObject(ctx, key)
		}
	}

	return s.GetOwnProfile(ctx, userID)
}

// OpenPhoto reads a stored photo by the path that follows /photos/.
func (s *Service) OpenPhoto(ctx context.Context, name string) (*objectstore.Object, error) {
	if !validPhotoName(name) {
		return nil, objectstore.ErrNotFound
	}
	return s.photos.Get(ctx, photoPrefix+name)
}

func (s *Service) photoURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// keyFromURL recovers the object key for photos this service issued.
func (s *Service) keyFromURL(photoURL string) (string, bool) {
	key, ok := strings.CutPrefix(photoURL, s.publicBaseURL+"/")
	if !ok || !strings.HasPrefix(key, photoPrefix) {
		return "", false
	}
	return key, true
}

func (s *Service) deleteObject(ctx context.Context, key string) {
	if err := s.photos.Delete(ctx, key); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
		s.logger.Warn("photo cleanup failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) computeStats(ctx context.Context, userID string) (Stats, error) {
	count, err := s.library.Count(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	rs, err := s.reviews.UserStats(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		LibraryCount:  count,
		ReviewsCount:  rs.ReviewsCount,
		AverageRating: rs.AverageRating,
	}, nil
}

func validPhotoName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
