package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/dmitrijs2005/onboarding/internal/server/services"
	"github.com/dmitrijs2005/onboarding/internal/steps"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// AuthService is the account side of the API.
type AuthService interface {
	Authenticator
	Signup(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.UserSummary, error)
}

// FormService is the wizard progress side of the API.
type FormService interface {
	GetForm(ctx context.Context, userID string) (*models.FormEntry, error)
	GetStep(ctx context.Context, userID string, n steps.Number) (models.StepData, error)
	UpdateStep(ctx context.Context, userID string, n steps.Number, raw []byte) (models.StepData, error)
	Submit(ctx context.Context, userID string) (*models.FormEntry, error)
}

// ImageService hands out presigned URLs for profile images.
type ImageService interface {
	PresignUpload(ctx context.Context, userID string) (*services.UploadTicket, error)
	PresignDownload(ctx context.Context, userID string) (string, error)
}

// Pinger reports store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	auth   AuthService
	forms  FormService
	images ImageService
	store  Pinger
}

// bindJSON decodes the request body into v. Bodies over the limit surface as
// *http.MaxBytesError, anything unparsable as a ValidationError.
func bindJSON(c *gin.Context, v any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return common.NewValidationError("", "unreadable request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return common.NewValidationError("", "request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return common.NewValidationError("", "malformed JSON")
	}
	return nil
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"token": res.Token, "user": res.User})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

func (h *handlers) me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": user})
}

func (h *handlers) getForm(c *gin.Context) {
	entry, err := h.forms.GetForm(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"formEntry": entry})
}

func (h *handlers) getStep(c *gin.Context) {
	n, err := steps.Parse(c.Param("stepNumber"))
	if err != nil {
		fail(c, err)
		return
	}

	data, err := h.forms.GetStep(c.Request.Context(), userID(c), n)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"stepNumber": int(n), "data": data})
}

// stepNumber accepts both 3 and "3" on the wire.
type stepNumber steps.Number

func (s *stepNumber) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = stepNumber(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return err
	}
	*s = stepNumber(n)
	return nil
}

type updateStepRequest struct {
	StepNumber *stepNumber      `json:"stepNumber"`
	Data       json.RawMessage `json:"data"`
}

func (h *handlers) updateStep(c *gin.Context) {
	var req updateStepRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if req.StepNumber == nil {
		fail(c, common.NewValidationError("stepNumber", "is required"))
		return
	}
	n := steps.Number(*req.StepNumber)
	if err := steps.Check(n); err != nil {
		fail(c, err)
		return
	}
	if len(req.Data) == 0 {
		fail(c, common.NewValidationError("data", "must be an object"))
		return
	}

	data, err := h.forms.UpdateStep(c.Request.Context(), userID(c), n, req.Data)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"message":    "Step data saved successfully",
		"stepNumber": int(n),
		"data":       data,
	})
}

func (h *handlers) submit(c *gin.Context) {
	entry, err := h.forms.Submit(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			failMsg(c, err, "Form entry not found")
			return
		}
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Form submitted successfully", "formEntry": entry})
}

func (h *handlers) presignUpload(c *gin.Context) {
	ticket, err := h.images.PresignUpload(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"key":       ticket.Key,
		"uploadUrl": ticket.URL,
		"expiresIn": int(ticket.ExpiresIn / time.Second),
	})
}

func (h *handlers) presignDownload(c *gin.Context) {
	url, err := h.images.PresignDownload(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			failMsg(c, err, "Profile image not found")
			return
		}
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"url": url})
}

func (h *handlers) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, envelope{Success: false, Message: msgNotFound})
}
