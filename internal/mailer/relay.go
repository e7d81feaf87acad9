package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Relay sends mail through an HTTP mail-relay API.
type Relay struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewRelay(baseURL, token string) *Relay {
	return &Relay{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		token:      token,
	}
}

func (r *Relay) Send(ctx context.Context, mail Mail) error {
	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	url := fmt.Sprintf("%s/api/send", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", mail.To, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send mail to %s: status %d: %s", mail.To, resp.StatusCode, string(respBody))
	}
	return nil
}
