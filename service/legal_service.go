package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/mail"
	"strings"
	"unicode/utf8"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

const maxLegalMessageLength = 5000

// LegalService records legal requests and acknowledges them by email
type LegalService struct {
	repo  repository.LegalRequestRepositoryInterface
	email EmailSender
}

// NewLegalService creates a new LegalService
func NewLegalService(repo repository.LegalRequestRepositoryInterface, email EmailSender) *LegalService {
	return &LegalService{repo: repo, email: email}
}

// Submit validates and stores the request, then emails an acknowledgement.
// A failed acknowledgement is logged; the request is kept either way.
func (s *LegalService) Submit(ctx context.Context, req *models.LegalRequest) (models.SendResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.RequestType = strings.ToLower(strings.TrimSpace(req.RequestType))
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		return models.SendResult{}, invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return models.SendResult{}, invalid("email", "must be a valid email address")
	}
	if !models.LegalRequestTypes[req.RequestType] {
		return models.SendResult{}, invalid("requestType", "must be privacy, deletion, copyright or other")
	}
	if req.Message == "" {
		return models.SendResult{}, invalid("message", "is required")
	}
	if utf8.RuneCountInString(req.Message) > maxLegalMessageLength {
		return models.SendResult{}, invalid("message", fmt.Sprintf("must be at most %d characters", maxLegalMessageLength))
	}
	req.Status = "open"

	if err := s.repo.Create(ctx, req); err != nil {
		return models.SendResult{}, err
	}

	result := s.email.Send(ctx, legalAckEmail(req))
	if !result.Success {
		log.Printf("⚠️  Legal request %d stored but acknowledgement failed: %s", req.ID, result.Error)
	}
	return result, nil
}

func legalAckEmail(req *models.LegalRequest) models.EmailMessage {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received your %s request (reference #%d) and will get back to you within 30 days.</p>
<p>Echo Vintage</p>`, html.EscapeString(req.Name), req.RequestType, req.ID)
	return models.EmailMessage{
		To:      []string{req.Email},
		Subject: fmt.Sprintf("We received your %s request", req.RequestType),
		HTML:    body,
		Text:    fmt.Sprintf("Hi %s,\n\nWe received your %s request (reference #%d) and will get back to you within 30 days.\n", req.Name, req.RequestType, req.ID),
	}
}
