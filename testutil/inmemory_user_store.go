package testutil

import (
	"context"
	"strings"

	ierr "invoicing-backend/errors"
	"invoicing-backend/models"
	"invoicing-backend/repository"

	"github.com/google/uuid"
)

// InMemoryUserStore implements repository.UserRepository.
type InMemoryUserStore struct {
	*InMemoryStore[*models.User]
}

var _ repository.UserRepository = (*InMemoryUserStore)(nil)

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{InMemoryStore: NewInMemoryStore[*models.User]()}
}

func copyUser(u *models.User) *models.User {
	out := *u
	out.Password = append([]byte(nil), u.Password...)
	return &out
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *models.User) error {
	if _, err := s.GetByEmail(ctx, u.Email); err == nil {
		return ierr.NewErrorf("user %s already exists", u.Email).
			WithHint("User already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if u.Id == "" {
		u.Id = uuid.NewString()
	}
	return s.InMemoryStore.Create(ctx, u.Id, copyUser(u))
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	found := s.InMemoryStore.List(ctx, func(u *models.User) bool {
		return strings.EqualFold(u.Email, email)
	}, nil)
	if len(found) == 0 {
		return nil, ierr.NewErrorf("user %s not found", email).
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	return copyUser(found[0]), nil
}

func (s *InMemoryUserStore) UpdateProfile(ctx context.Context, u *models.User) error {
	existing, err := s.InMemoryStore.Get(ctx, u.Id)
	if err != nil {
		return notFound(err, "User")
	}
	updated := copyUser(existing)
	updated.FirstName = u.FirstName
	updated.LastName = u.LastName
	updated.Address = u.Address
	return s.InMemoryStore.Update(ctx, u.Id, updated)
}
