package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
)

type UserPGStore struct {
	pool pgBeginner
}

func NewUserPGStore(pool pgBeginner) ports.UserStore {
	return &UserPGStore{pool: pool}
}

const userColumns = `id, first_name, last_name, email, role, territories, profile`

func (s *UserPGStore) Insert(ctx context.Context, user types.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx, `
INSERT INTO users (id, first_name, last_name, email, role, territories, profile)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Territories, user.Profile)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *UserPGStore) FindByID(ctx context.Context, id string) (types.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.User{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var user types.User
	err = tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
			&user.Role, &user.Territories, &user.Profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.User{}, ports.ErrUserNotFound
	}
	if err != nil {
		return types.User{}, err
	}
	if user.Territories == nil {
		user.Territories = []string{}
	}

	return user, tx.Commit(ctx)
}

func (s *UserPGStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var count int64
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM users WHERE lower(email) = lower($1)`, email).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit(ctx)
}

func (s *UserPGStore) List(ctx context.Context, search string, offset int, limit int) ([]types.User, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	pattern := prefixPattern(search)

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT count(*) FROM users WHERE last_name ILIKE $1 OR first_name ILIKE $1 OR email ILIKE $1
`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT `+userColumns+` FROM users
WHERE last_name ILIKE $1 OR first_name ILIKE $1 OR email ILIKE $1
ORDER BY last_name, first_name
OFFSET $2 LIMIT $3
`, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var user types.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
			&user.Role, &user.Territories, &user.Profile); err != nil {
			return nil, 0, err
		}
		if user.Territories == nil {
			user.Territories = []string{}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, tx.Commit(ctx)
}
