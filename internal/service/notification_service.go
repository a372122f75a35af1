package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/budget-service/internal/config"
	"github.com/spec-kit/budget-service/internal/events"
	"github.com/spec-kit/budget-service/internal/persistence"
)

const (
	securityIncidentKey = "security:incidents"
	securityIncidentCap = 1000
)

// NotificationService reacts to session lifecycle events: it logs them,
// journals security incidents to Redis, and posts a webhook when refresh
// token reuse is detected.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	redis      *persistence.Redis
	client     *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, redis *persistence.Redis) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		redis:      redis,
		client:     &http.Client{Timeout: cfg.WebhookTimeout},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountRegistered, n.handleAccountRegistered)
	n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSessionStarted)
	n.dispatcher.Subscribe(events.EventSessionRevoked, n.handleSessionRevoked)
	n.dispatcher.Subscribe(events.EventRefreshReuseDetected, n.handleRefreshReuseDetected)
}

func (n *NotificationService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountRegistered", zap.Int64("account_id", event.AccountID))
	return nil
}

func (n *NotificationService) handleSessionStarted(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionStarted", zap.Int64("account_id", event.AccountID))
	return nil
}

func (n *NotificationService) handleSessionRevoked(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionRevoked", zap.Int64("account_id", event.AccountID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRefreshReuseDetected(ctx context.Context, event events.Event) error {
	n.logger.Warn("RefreshReuseDetected", zap.Int64("account_id", event.AccountID))
	n.journalIncident(ctx, event)
	n.sendWebhook(event)
	return nil
}

// journalIncident appends the incident to a capped Redis list so operators
// can inspect recent reuse attempts.
func (n *NotificationService) journalIncident(ctx context.Context, event events.Event) {
	if n.redis == nil || n.redis.Client == nil {
		return
	}
	entry, err := json.Marshal(event)
	if err != nil {
		return
	}
	pipe := n.redis.Client.Pipeline()
	pipe.LPush(ctx, securityIncidentKey, entry)
	pipe.LTrim(ctx, securityIncidentKey, 0, securityIncidentCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.Warn("failed to journal security incident", zap.Error(err))
	}
}

// sendWebhook posts the incident to the configured endpoint. Posting is
// fire-and-forget; a failed delivery only logs.
func (n *NotificationService) sendWebhook(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	go func() {
		if err := n.postWebhook(event); err != nil {
			n.logger.Warn("failed to send security webhook", zap.Error(err))
		}
	}()
}

func (n *NotificationService) postWebhook(event events.Event) error {
	body, err := json.Marshal(map[string]any{
		"event":      string(event.Type),
		"account_id": event.AccountID,
		"timestamp":  event.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := n.client.Post(n.cfg.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
