package domain

import (
	"context"
	"errors"
)

var ErrNoCustomer = errors.New("no_customer")

// Customer is owned by the authentication/profile subsystem; billing
// only reads it.
type Customer struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Service interface {
	CurrentCustomer(ctx context.Context) (*Customer, error)
}
