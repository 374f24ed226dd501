package server

import (
	"github.com/gin-gonic/gin"
	billingdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
)

type beginCheckoutRequest struct {
	PlanID       string `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"required"`
}

// BeginCheckout
// POST /api/billing/checkout
func (s *Server) BeginCheckout(c *gin.Context) {
	customer, err := s.customerSvc.CurrentCustomer(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req beginCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cycle, err := catalogdomain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidPlan)
		return
	}

	directive, err := s.billingSvc.BeginCheckout(c.Request.Context(), billingdomain.BeginCheckoutRequest{
		PlanID:       req.PlanID,
		BillingCycle: cycle,
		UserID:       customer.UserID,
		Email:        customer.Email,
		DisplayName:  customer.DisplayName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, directive)
}

type resumeRequest struct {
	CustomerKey  string `json:"customer_key" binding:"required"`
	AuthKey      string `json:"auth_key" binding:"required"`
	PlanID       string `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"required"`
}

// ResumeAfterAuthorization
// POST /api/billing/resume
func (s *Server) ResumeAfterAuthorization(c *gin.Context) {
	customer, err := s.customerSvc.CurrentCustomer(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cycle, err := catalogdomain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidPlan)
		return
	}

	record, err := s.billingSvc.ResumeAfterAuthorization(c.Request.Context(), billingdomain.ResumeRequest{
		CustomerKey:  req.CustomerKey,
		AuthKey:      req.AuthKey,
		PlanID:       req.PlanID,
		BillingCycle: cycle,
		UserID:       customer.UserID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, record)
}

type confirmPaymentRequest struct {
	OrderID          string `json:"order_id" binding:"required"`
	Amount           int64  `json:"amount" binding:"required"`
	PaymentReference string `json:"payment_reference" binding:"required"`
	PlanID           string `json:"plan_id" binding:"required"`
	BillingCycle     string `json:"billing_cycle" binding:"required"`
}

// ConfirmOneTimePayment
// POST /api/billing/confirm
func (s *Server) ConfirmOneTimePayment(c *gin.Context) {
	customer, err := s.customerSvc.CurrentCustomer(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cycle, err := catalogdomain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidPlan)
		return
	}

	record, err := s.billingSvc.ConfirmOneTimePayment(c.Request.Context(), billingdomain.ConfirmPaymentRequest{
		OrderID:          req.OrderID,
		Amount:           req.Amount,
		PaymentReference: req.PaymentReference,
		PlanID:           req.PlanID,
		BillingCycle:     cycle,
		UserID:           customer.UserID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, record)
}
