// Package events records editor changes in an append-only journal.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencode-ai/netforge/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// Log records a change of one entity. payload may be nil.
func Log(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		event.Payload = data
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	return repo.Create(ctx, event)
}

// LogNetwork records a whole-network change such as an import.
func LogNetwork(ctx context.Context, repo Repository, eventType models.EventType, payload any) error {
	return Log(ctx, repo, eventType, models.EntityTypeNetwork, string(models.EntityTypeNetwork), payload)
}
