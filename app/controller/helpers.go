package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"echo-vintage-ecard/pricing"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
	"echo-vintage-ecard/slots"
)

// maxJSONBody caps request bodies that are decoded as JSON
const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, slots.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrInUse),
		errors.Is(err, repository.ErrPromoAlreadyRedeemed), errors.Is(err, repository.ErrPromoExhausted),
		errors.Is(err, service.ErrNotResendable):
		return http.StatusConflict
	case errors.Is(err, repository.ErrInsufficientPoints):
		return http.StatusPaymentRequired
	case errors.Is(err, repository.ErrPromoInvalid), errors.Is(err, pricing.ErrItemUnavailable),
		errors.Is(err, slots.ErrUnknownHandle):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCardExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrCardLocked):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPreviewBusy):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeDomainError logs err and writes the mapped status. Internal errors
// are not echoed to the client.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	log.Printf("❌ %s: %v (status %d)", op, err, status)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("❌ Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// pathID parses the named path wildcard as a positive int64
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Printf("❌ Invalid %s: %q", name, raw)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s parameter", name))
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &service.ValidationError{Field: field, Msg: "is required"}
	}
	return nil
}

func nonNegative(field string, v int) error {
	if v < 0 {
		return &service.ValidationError{Field: field, Msg: "must not be negative"}
	}
	return nil
}
