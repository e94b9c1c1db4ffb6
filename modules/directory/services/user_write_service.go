package services

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

const (
	errUserNotFound    = "USER_NOT_FOUND"
	errUserEmailExists = "USER_EMAIL_EXISTS"
)

type UserWriteService interface {
	Create(ctx context.Context, req CreateUserRequest) (string, error)
	Get(ctx context.Context, id string) (types.User, error)
	List(ctx context.Context, search string, offset int, limit int) ([]types.User, int64, error)
}

type CreateUserRequest struct {
	FirstName   string
	LastName    string
	Email       string
	Role        string
	Territories []string
	Profile     string
}

type userWriteService struct {
	store ports.UserStore
}

func NewUserWriteService(store ports.UserStore) UserWriteService {
	return &userWriteService{store: store}
}

func (s *userWriteService) Create(ctx context.Context, req CreateUserRequest) (string, error) {
	count, err := s.store.CountByEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "", httperr.NewBadRequest(errUserEmailExists)
	}

	id, err := newUUID()
	if err != nil {
		return "", err
	}

	territories := req.Territories
	if territories == nil {
		territories = []string{}
	}

	err = s.store.Insert(ctx, types.User{
		ID:          id,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Role:        req.Role,
		Territories: territories,
		Profile:     req.Profile,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *userWriteService) Get(ctx context.Context, id string) (types.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrUserNotFound) {
		return types.User{}, httperr.NewNotFound(errUserNotFound)
	}
	return user, err
}

func (s *userWriteService) List(ctx context.Context, search string, offset int, limit int) ([]types.User, int64, error) {
	return s.store.List(ctx, search, offset, limit)
}
