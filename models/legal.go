package models

import "time"

// LegalRequestTypes lists accepted request types
var LegalRequestTypes = map[string]bool{
	"privacy":   true,
	"deletion":  true,
	"copyright": true,
	"other":     true,
}

// LegalRequest is a privacy/deletion/copyright request from a visitor
type LegalRequest struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	RequestType string    `json:"requestType"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
