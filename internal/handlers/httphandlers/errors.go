package httphandlers

import (
	"errors"
	"net/http"

	"github.com/fasalsetu/agrilink/internal/resources/assistant"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{contract.ErrContractNotFound, http.StatusNotFound},
	{contract.ErrMilestoneNotFound, http.StatusNotFound},
	{users.ErrUserNotFound, http.StatusNotFound},
	{demands.ErrDemandNotFound, http.StatusNotFound},

	{contract.ErrInvalidTransition, http.StatusConflict},
	{contract.ErrContractExists, http.StatusConflict},
	{contract.ErrMilestoneAlreadyPaid, http.StatusConflict},
	{demands.ErrDemandNotOpen, http.StatusConflict},
	{demands.ErrDemandExists, http.StatusConflict},
	{users.ErrUserExists, http.StatusConflict},

	{users.ErrInvalidCredentials, http.StatusUnauthorized},

	{contract.ErrActorNotAllowed, http.StatusForbidden},
	{contract.ErrMilestoneNotPayable, http.StatusForbidden},
	{users.ErrAccountPending, http.StatusForbidden},
	{users.ErrAccountInactive, http.StatusForbidden},

	{contract.ErrAnalysisUnavailable, http.StatusBadGateway},
	{contract.ErrFraudDetected, http.StatusUnprocessableEntity},
	{contract.ErrInvalidOTP, http.StatusUnprocessableEntity},
	{contract.ErrInvalidUpdate, http.StatusUnprocessableEntity},
	{contract.ErrPackagingIncomplete, http.StatusUnprocessableEntity},
	{contract.ErrCheckpointIncomplete, http.StatusUnprocessableEntity},
	{contract.ErrDisputeIncomplete, http.StatusUnprocessableEntity},
	{contract.ErrUnknownResolution, http.StatusUnprocessableEntity},
	{contract.ErrInvalidMilestones, http.StatusUnprocessableEntity},
	{contract.ErrInvalidTerms, http.StatusUnprocessableEntity},
	{demands.ErrInvalidDemand, http.StatusUnprocessableEntity},
	{users.ErrInvalidUser, http.StatusUnprocessableEntity},
	{assistant.ErrEmptyMessage, http.StatusUnprocessableEntity},
}

// ErrorStatus maps a domain error to the http status code it is reported with
func ErrorStatus(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func (h *HTTPHandler) abortWithError(ctx *gin.Context, err error) {
	status := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s: %s", ctx.Request.Method, ctx.Request.URL.Path, err)
	}
	ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
