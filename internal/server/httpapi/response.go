package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgNotFound       = "Route not found"
	msgInternal       = "Internal Server Error"
	msgUnauthorized   = "Not authorized"
	msgTokenExpired   = "Token expired"
	msgInvalidCreds   = "Invalid email or password"
	msgDuplicateEmail = "Email already exists"
	msgTooLarge       = "Request body too large"
)

// envelope is the body of every error response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

// statusFor maps the error taxonomy onto HTTP status codes and client-safe
// messages. Unknown errors never leak their text.
func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "Validation Error"
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusBadRequest, msgDuplicateEmail
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, msgInvalidCreds
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, msgTokenExpired
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes the error envelope and aborts the chain. 5xx causes are logged
// by the request logger through c.Error.
func fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: msg})
}

// failMsg is fail with a handler-specific message.
func failMsg(c *gin.Context, err error, msg string) {
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg = msgInternal
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: msg})
}
