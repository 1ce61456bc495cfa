package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultFcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// FcmChannel sends notifications through Firebase Cloud Messaging's HTTP
// API. It only depends on the wire contract, not the firebase SDK.
type FcmChannel struct {
	serverKey  string
	endpoint   string
	httpClient *http.Client
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ClickAction string `json:"click_action,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

func NewFcmChannel(serverKey, endpoint string) *FcmChannel {
	if endpoint == "" {
		endpoint = defaultFcmEndpoint
	}

	return &FcmChannel{
		serverKey:  serverKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (fcm *FcmChannel) Send(ctx context.Context, token string, payload Payload) error {
	body, err := json.Marshal(fcmMessage{
		To: token,
		Notification: fcmNotification{
			Title:       payload.Title,
			Body:        payload.Body,
			ClickAction: payload.Link,
		},
		Data: payload.Data,
	})
	if err != nil {
		return errors.Wrap(err, "FcmChannel.Send")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fcm.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "FcmChannel.Send")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("key=%s", fcm.serverKey))

	resp, err := fcm.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "FcmChannel.Send")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FcmChannel.Send: fcm responded with status %v", resp.StatusCode)
	}

	fcmResp := fcmResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return errors.Wrap(err, "FcmChannel.Send")
	}

	if fcmResp.Failure > 0 {
		for _, result := range fcmResp.Results {
			if result.Error != "" {
				return fmt.Errorf("FcmChannel.Send: %v", result.Error)
			}
		}
		return fmt.Errorf("FcmChannel.Send: delivery rejected")
	}

	return nil
}
