package service

import (
	"context"

	customerdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customercontext"
)

// Service resolves the current customer from request context. The
// upstream auth layer is responsible for putting the customer there;
// this service only reads it.
type Service struct{}

func New() customerdomain.Service {
	return &Service{}
}

func (s *Service) CurrentCustomer(ctx context.Context) (*customerdomain.Customer, error) {
	c, ok := customercontext.FromContext(ctx)
	if !ok || c.UserID == "" {
		return nil, customerdomain.ErrNoCustomer
	}
	return &c, nil
}
