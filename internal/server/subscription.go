package server

import (
	"github.com/gin-gonic/gin"
	billingdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
)

// ListSubscriptions
// GET /api/subscriptions
func (s *Server) ListSubscriptions(c *gin.Context) {
	customer, err := s.customerSvc.CurrentCustomer(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	records, err := s.billingSvc.ListForUser(c.Request.Context(), customer.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, records)
}

// GetSubscription
// GET /api/subscriptions/:order_id
func (s *Server) GetSubscription(c *gin.Context) {
	customer, err := s.customerSvc.CurrentCustomer(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orderID := c.Param("order_id")
	if orderID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	record, err := s.billingSvc.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Ledger rows belong to their owner.
	if record.UserID != customer.UserID {
		AbortWithError(c, billingdomain.ErrRecordNotFound)
		return
	}

	respondData(c, record)
}
