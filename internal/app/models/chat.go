package models

import "time"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Pathname string        `json:"pathname"`
	Search   string        `json:"search"`
}

// ChatInteraction is one logged assistant turn.
type ChatInteraction struct {
	ID              string    `json:"id"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	HotelID         string    `json:"hotelId,omitempty"`
	HasHotelContext bool      `json:"hasHotelContext"`
	Prompt          string    `json:"prompt"`
	Response        string    `json:"response,omitempty"`
	StatusCode      int       `json:"statusCode"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	LatencyMs       int64     `json:"latencyMs"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CustomerCapture is an email-list signup from the checkout or landing pages.
type CustomerCapture struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	HotelID   string `json:"hotelId"`
	Checkin   string `json:"checkin"`
	Checkout  string `json:"checkout"`
}

type CaptureResult struct {
	Saved  bool   `json:"saved"`
	Reason string `json:"reason,omitempty"`
}
