package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// ErrPushNotConfigured indicates no FCM server key was provided
var ErrPushNotConfigured = errors.New("push notifications are not configured")

// PushSender delivers push notifications through FCM. An empty server key
// leaves the sender disabled; Send then reports ErrPushNotConfigured.
type PushSender struct {
	httpClient *http.Client
	endpoint   string
	serverKey  string
}

// NewPushSender creates an FCM push sender
func NewPushSender(serverKey string) *PushSender {
	return &PushSender{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   fcmEndpoint,
		serverKey:  serverKey,
	}
}

// pushMessage is the FCM legacy HTTP request body
type pushMessage struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send delivers one push notification to a device token
func (p *PushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if p.serverKey == "" {
		return ErrPushNotConfigured
	}

	payload, err := json.Marshal(pushMessage{
		To:           token,
		Notification: pushNotification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("failed to build push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
