// Package fcm sends FCM HTTP v1 notifications. Delivery is best effort;
// callers decide whether a send failure matters.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// PushClient delivers one notification to one device token.
type PushClient interface {
	Send(ctx context.Context, token, title, body, reportID string) error
}

type pushClient struct {
	log         *logger.Logger
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	endpoint    string
}

type v1Message struct {
	Message struct {
		Token        string            `json:"token"`
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data"`
	} `json:"message"`
}

func NewPushClient(log *logger.Logger) (PushClient, error) {
	clientLog := log.With("client", "PushClient")

	projectID := strings.TrimSpace(os.Getenv("FCM_PROJECT_ID"))
	if projectID == "" {
		return nil, fmt.Errorf("missing env var FCM_PROJECT_ID")
	}

	credsJSON, err := serviceAccountJSON()
	if err != nil {
		return nil, err
	}
	cfg, err := google.JWTConfigFromJSON(credsJSON, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FCM service account: %w", err)
	}

	return &pushClient{
		log:         clientLog,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		tokenSource: cfg.TokenSource(context.Background()),
		endpoint:    fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", projectID),
	}, nil
}

func serviceAccountJSON() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("FCM_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("FCM_SERVICE_ACCOUNT_PATH"))
	if path == "" {
		return nil, fmt.Errorf("missing env var FCM_SERVICE_ACCOUNT_PATH or FCM_SERVICE_ACCOUNT_JSON")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FCM service account %q: %w", path, err)
	}
	return raw, nil
}

func (c *pushClient) Send(ctx context.Context, token, title, body, reportID string) error {
	var msg v1Message
	msg.Message.Token = token
	msg.Message.Notification = map[string]string{
		"title": title,
		"body":  body,
	}
	// Data keys the mobile client routes on. reportId opens the report
	// detail screen directly.
	msg.Message.Data = map[string]string{
		"title":    title,
		"body":     body,
		"reportId": reportID,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode FCM message: %w", err)
	}

	tok, err := c.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("failed to mint FCM access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("FCM send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("FCM send returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
