package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-sync/internal/models"
	"auction-sync/internal/syncerrors"
	"auction-sync/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps engine errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, syncerrors.ErrSubmitInFlight):
		return http.StatusConflict, "submission already in progress"
	case errors.Is(err, syncerrors.ErrLotNotFound):
		return http.StatusNotFound, "lot not found"
	case errors.Is(err, syncerrors.ErrNotMounted):
		return http.StatusNotFound, "lot is not open"
	case errors.Is(err, syncerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "amount must be positive"
	case errors.Is(err, syncerrors.ErrInvalidAdminAction):
		return http.StatusBadRequest, "invalid admin action"
	case errors.Is(err, syncerrors.ErrRejected):
		msg, _ := syncerrors.RejectionMessage(err)
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, syncerrors.ErrTransport):
		return http.StatusBadGateway, "remote unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// OutcomeStatus maps a settled mutation outcome to an HTTP status code.
func OutcomeStatus(outcome models.Outcome) int {
	switch outcome {
	case models.OutcomeOK:
		return http.StatusOK
	case models.OutcomeRejected:
		return http.StatusUnprocessableEntity
	case models.OutcomeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteMutationResult sends a settled result. Non-ok outcomes still carry
// the result so the UI can render its banner from one shape.
func WriteMutationResult(c *gin.Context, key string, res models.MutationResult, okMessage string) {
	resp := MutationResponse{Key: key, Outcome: res.Outcome, Message: res.Message, Receipt: res.Receipt}
	status := OutcomeStatus(res.Outcome)
	if status == http.StatusOK {
		utils.JSONResponse(c, status, resp, okMessage)
		return
	}
	utils.JSONErrorWithData(c, status, resp, res.Message)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
