package models

// EmailMessage is an outbound transactional email
type EmailMessage struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"replyTo,omitempty"`
}

// SendResult reports the outcome of an email or Messenger delivery
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Attempts  int    `json:"attempts"`
	Mocked    bool   `json:"mocked,omitempty"`
}
