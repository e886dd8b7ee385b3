package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// EventType categorizes editor changes.
type EventType string

const (
	// Network events
	EventTypeNetworkCreated  EventType = "network.created"
	EventTypeNetworkImported EventType = "network.imported"
	EventTypeNetworkExported EventType = "network.exported"

	// Binding events
	EventTypeBindingAdded      EventType = "binding.added"
	EventTypeBindingUpdated    EventType = "binding.updated"
	EventTypeBindingRemoved    EventType = "binding.removed"
	EventTypeVariablesImported EventType = "variables.imported"

	// Node events
	EventTypeNodeAdded   EventType = "node.added"
	EventTypeNodeUpdated EventType = "node.updated"
	EventTypeNodeRenamed EventType = "node.renamed"
	EventTypeNodeRemoved EventType = "node.removed"

	// Function events
	EventTypeFunctionAdded     EventType = "function.added"
	EventTypeFunctionUpdated   EventType = "function.updated"
	EventTypeFunctionRemoved   EventType = "function.removed"
	EventTypeFunctionsImported EventType = "functions.imported"
)

// EntityType identifies the kind of entity an event relates to.
type EntityType string

const (
	EntityTypeNetwork  EntityType = "network"
	EntityTypeBinding  EntityType = "binding"
	EntityTypeNode     EntityType = "node"
	EntityTypeFunction EntityType = "function"
)

// Event is one entry of the append-only change journal.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the change was applied.
	Timestamp time.Time `json:"timestamp"`

	Type       EventType  `json:"type"`
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the changed entity, or "network" for
	// whole-network changes.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate checks if the event is complete.
func (e *Event) Validate() error {
	var errs []error
	if strings.TrimSpace(string(e.Type)) == "" {
		errs = append(errs, errors.New("type: event type is required"))
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		errs = append(errs, errors.New("entity_type: entity_type is required"))
	}
	if strings.TrimSpace(e.EntityID) == "" {
		errs = append(errs, errors.New("entity_id: entity_id is required"))
	}
	return errors.Join(errs...)
}

// DocumentPayload is the payload for import and export events.
type DocumentPayload struct {
	Source string `json:"source,omitempty"`
	Format string `json:"format,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// RenamedPayload is the payload for node.renamed events.
type RenamedPayload struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// BindingPayload is the payload for binding events.
type BindingPayload struct {
	Name string `json:"name"`
}
