package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EntityInvestment = "investment"
	EntityWithdrawal = "withdrawal"
	EntityUser       = "user"
)

const (
	EventCreated         = "CREATED"
	EventStatusChanged   = "STATUS_CHANGED"
	EventBalanceAdjusted = "BALANCE_ADJUSTED"
	EventRoleChanged     = "ROLE_CHANGED"
)

// Event is an append-only audit row written in the same transaction as the change it records.
type Event struct {
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	EntityType  string         `gorm:"column:entity_type;type:varchar(20);not null;index:idx_events_entity" json:"entity_type"`
	EntityID    uuid.UUID      `gorm:"column:entity_id;type:uuid;not null;index:idx_events_entity" json:"entity_id"`
	EventType   string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorUserID *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	EventData   datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

// NewEvent builds an Event with data marshalled to JSON.
func NewEvent(entityType string, entityID uuid.UUID, eventType string, actor *uuid.UUID, data map[string]interface{}) (*Event, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		EntityType:  entityType,
		EntityID:    entityID,
		EventType:   eventType,
		ActorUserID: actor,
		EventData:   datatypes.JSON(b),
	}, nil
}
