package users

import (
	"context"
)

// Repository is the persistence contract for user records. Implementations
// return common.ErrorNotFound for missing users and
// common.ErrorAlreadyExists for duplicate emails.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
