package api

import "time"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type FormEntry struct {
	ID          string                    `json:"id"`
	UserID      string                    `json:"userId"`
	Steps       map[string]map[string]any `json:"steps"`
	Completed   bool                      `json:"completed"`
	CompletedAt *time.Time                `json:"completedAt"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// UploadTicket is a presigned PUT for a new profile image.
type UploadTicket struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type meResponse struct {
	User User `json:"user"`
}

type formResponse struct {
	FormEntry FormEntry `json:"formEntry"`
}

type stepResponse struct {
	StepNumber int            `json:"stepNumber"`
	Data       map[string]any `json:"data"`
}

type stepRequest struct {
	StepNumber int            `json:"stepNumber"`
	Data       map[string]any `json:"data"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
