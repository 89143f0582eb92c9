package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Servicio que llama al microservicio externo de emails transaccionales.
// El renderizado de plantillas es problema de ese servicio, no nuestro.
type MailService struct {
	mailURL string
	client  *http.Client
}

func NewMailService(mailURL string) *MailService {
	return &MailService{
		mailURL: mailURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type mailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (m *MailService) Send(ctx context.Context, to, subject, body string) error {
	b, err := json.Marshal(mailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/send", m.mailURL), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail service respondió %d", resp.StatusCode)
	}
	return nil
}
