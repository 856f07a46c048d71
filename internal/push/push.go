// Package push delivers web push notifications to subscribed devices
// and fans a single event out across a group's members.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/snapgroups/backend/internal/config"
	"github.com/snapgroups/backend/internal/models"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// DefaultIcon is attached to every delivered notification.
const DefaultIcon = "/icon1.png"

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
}

// Sender delivers a payload to a single subscription.
type Sender interface {
	Send(ctx context.Context, sub models.Subscription, payload Payload) error
}

// WebPushSender sends notifications through the web push protocol using
// VAPID credentials.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
}

// NewWebPushSender creates a sender from the provided VAPID configuration.
func NewWebPushSender(cfg config.PushConfig) *WebPushSender {
	return &WebPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.Subscriber,
	}
}

// VAPIDPublicKey returns the public key clients need to register a
// push subscription.
func (s *WebPushSender) VAPIDPublicKey() string {
	return s.publicKey
}

// Send delivers the payload to one subscription endpoint.
func (s *WebPushSender) Send(ctx context.Context, sub models.Subscription, payload Payload) error {
	if payload.Icon == "" {
		payload.Icon = DefaultIcon
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// GenerateVAPIDKeys creates a fresh VAPID key pair for deployment setup.
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}

var _ Sender = (*WebPushSender)(nil)
