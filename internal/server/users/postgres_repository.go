package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const pgUniqueViolation = "23505"

// PostgresRepository is the relational alternative to the document store,
// for deployments without MongoDB.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

// Bootstrap creates the users table if it does not exist. The email column
// carries the uniqueness constraint the registration flow relies on.
func (r *PostgresRepository) Bootstrap(ctx context.Context) error {

	query :=
		`CREATE TABLE IF NOT EXISTS users (
             id            TEXT PRIMARY KEY,
             name          TEXT NOT NULL,
             email         TEXT NOT NULL UNIQUE,
             contact_phone TEXT NOT NULL,
             password      TEXT NOT NULL,
             salt          TEXT NOT NULL
         )`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating users table: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	user.ID = uuid.NewString()

	query :=
		`INSERT INTO users (id, name, email, contact_phone, password, salt)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Phone, user.PasswordHash, user.Salt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {

	query :=
		`SELECT id, name, email, contact_phone, password, salt FROM users
		 WHERE email = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.PasswordHash, &user.Salt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {

	query :=
		`SELECT id, name, email, contact_phone, password, salt FROM users
		 ORDER BY email
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.PasswordHash, &user.Salt); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		list = append(list, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return list, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("error performing sql request: %v", err)
	}

	return exists, nil
}
