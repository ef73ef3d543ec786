package user

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, email, hashedPassword, name, surname string) (User, error) {
	email = NormalizeEmail(email)

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	newUser := &User{
		Email:    email,
		Password: hashedPassword,
		Role:     RoleUser,
		Name:     name,
		Surname:  surname,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}

	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return s.repo.UpdateProfile(ctx, userID, updates)
}

func (s *Service) SetPhotoURL(ctx context.Context, userID, photoURL string) error {
	return s.repo.UpdateProfile(ctx, userID, map[string]any{"photo_url": photoURL})
}
