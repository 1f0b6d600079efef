package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Gotify pushes messages to a Gotify server's /message endpoint using an
// application token.
type Gotify struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGotify creates a Gotify notifier. The baseURL is the root URL of the
// Gotify instance; the token is an application token.
func NewGotify(baseURL, token string) *Gotify {
	return &Gotify{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type gotifyMessage struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Notify posts one message. A non-2xx response is an error; the body is
// included for diagnosis.
func (g *Gotify) Notify(ctx context.Context, title, message string, priority int) error {
	payload, err := json.Marshal(gotifyMessage{
		Title:    title,
		Message:  message,
		Priority: priority,
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	url := g.baseURL + "/message?token=" + g.token
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pushing notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf(
			"unexpected status %d pushing notification: %s",
			resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}
	return nil
}
