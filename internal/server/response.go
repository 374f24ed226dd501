package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	customerdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer/domain"
)

var ErrInvalidRequest = errors.New("invalid_request")

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// AbortWithError maps the billing error taxonomy onto HTTP statuses and
// stable error codes. recording_failed_after_charge keeps its own code
// so the shell can render "payment succeeded, contact support" instead
// of a generic failure.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, ErrInvalidRequest):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, billingdomain.ErrInvalidPlan):
		status, code = http.StatusBadRequest, "invalid_plan"
	case errors.Is(err, customerdomain.ErrNoCustomer):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, billingdomain.ErrChargeDeclined):
		status, code = http.StatusPaymentRequired, "charge_declined"
	case errors.Is(err, billingdomain.ErrCredentialIssuanceFailed):
		status, code = http.StatusBadGateway, "credential_issuance_failed"
	case errors.Is(err, billingdomain.ErrChargeGatewayError):
		status, code = http.StatusBadGateway, "charge_gateway_error"
	case errors.Is(err, billingdomain.ErrPaymentConfirmationFailed):
		status, code = http.StatusConflict, "payment_confirmation_failed"
	case errors.Is(err, billingdomain.ErrRecordingFailedAfterCharge):
		status, code = http.StatusInternalServerError, "recording_failed_after_charge"
	case errors.Is(err, billingdomain.ErrRecordNotFound):
		status, code = http.StatusNotFound, "not_found"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": code})
}
