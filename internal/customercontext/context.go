package customercontext

import (
	"context"

	customerdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer/domain"
)

type contextKey struct{}

func NewContext(ctx context.Context, c customerdomain.Customer) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func FromContext(ctx context.Context) (customerdomain.Customer, bool) {
	c, ok := ctx.Value(contextKey{}).(customerdomain.Customer)
	return c, ok
}
