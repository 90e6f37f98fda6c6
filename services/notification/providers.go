package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrProviderFailure is returned by the "fail" provider.
var ErrProviderFailure = errors.New("provider failure")

// NewProvider picks a delivery provider by name: log (default), noop, fail,
// webhook, or a bare http(s) URL treated as a webhook.
func NewProvider(kind, webhookURL, token string, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch kind {
	case "", "stub", "log":
		return logProvider{logger: logger}
	case "noop":
		return noopProvider{}
	case "fail":
		return failProvider{}
	case "webhook":
		if webhookURL == "" {
			logger.Warn("Webhook provider without a URL, logging notifications instead")
			return logProvider{logger: logger}
		}
		return newWebhookProvider(webhookURL, token)
	default:
		if strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://") {
			return newWebhookProvider(kind, token)
		}
		logger.Warn("Unknown notification provider, logging notifications instead", zap.String("provider", kind))
		return logProvider{logger: logger}
	}
}

type logProvider struct {
	logger *zap.Logger
}

func (p logProvider) Send(_ context.Context, message, recipient string) error {
	p.logger.Info("Notification", zap.String("recipient", recipient), zap.String("message", message))
	return nil
}

type noopProvider struct{}

func (noopProvider) Send(context.Context, string, string) error {
	return nil
}

type failProvider struct{}

func (failProvider) Send(context.Context, string, string) error {
	return ErrProviderFailure
}

type webhookProvider struct {
	url    string
	token  string
	client *http.Client
}

func newWebhookProvider(url, token string) webhookProvider {
	return webhookProvider{url: url, token: token, client: &http.Client{Timeout: 5 * time.Second}}
}

func (p webhookProvider) Send(ctx context.Context, message, recipient string) error {
	body, err := json.Marshal(map[string]string{
		"channel":   "email",
		"recipient": recipient,
		"message":   message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected notification: status %d", resp.StatusCode)
	}
	return nil
}
