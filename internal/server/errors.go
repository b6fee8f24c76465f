package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	catalogdomain "github.com/reelgate/reelgate/internal/catalog/domain"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	meteringdomain "github.com/reelgate/reelgate/internal/metering/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	CurrentBalance string `json:"current_balance,omitempty"`
	RequiredCost   string `json:"required_cost,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var insufficient *meteringdomain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return http.StatusPaymentRequired, errorPayload{
			Type:           "insufficient_funds",
			Message:        "balance too low to renew access",
			CurrentBalance: insufficient.Balance.String(),
			RequiredCost:   insufficient.Required.String(),
		}
	}

	switch {
	case errors.Is(err, meteringdomain.ErrMissingCredential):
		return http.StatusUnauthorized, errorPayload{
			Type:    "missing_credential",
			Message: "api key required",
		}
	case errors.Is(err, meteringdomain.ErrInvalidCredential):
		return http.StatusForbidden, errorPayload{
			Type:    "invalid_credential",
			Message: "api key not recognized",
		}
	case errors.Is(err, meteringdomain.ErrStore):
		return http.StatusInternalServerError, errorPayload{
			Type:    "store_error",
			Message: "internal server error",
		}
	case errors.Is(err, ledgerdomain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "insufficient_funds",
			Message: "balance too low",
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, billingdomain.ErrBadSignature):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_signature",
			Message: "webhook signature invalid",
		}
	case errors.Is(err, accountdomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "email already registered",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, ledgerdomain.ErrAccountNotFound),
		errors.Is(err, billingdomain.ErrUnknownProvider),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, accountdomain.ErrInvalidEmail),
		errors.Is(err, accountdomain.ErrInvalidPassword),
		errors.Is(err, accountdomain.ErrInvalidChatID),
		errors.Is(err, apikeydomain.ErrInvalidStatus),
		errors.Is(err, billingdomain.ErrInvalidTopup),
		errors.Is(err, ledgerdomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

// classifyErrorForLog feeds the request logger's error fields.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return "client_error", payload.Type
	default:
		return "", payload.Type
	}
}
