package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType kind of an emitted fact
type EventType string

const (
	EventAppRegistered      EventType = "app_registered"
	EventAppApproved        EventType = "app_approved"
	EventAppRejected        EventType = "app_rejected"
	EventAppUpdated         EventType = "app_updated"
	EventAppDeactivated     EventType = "app_deactivated"
	EventAppFeatured        EventType = "app_featured"
	EventAppUnfeatured      EventType = "app_unfeatured"
	EventAdminAdded         EventType = "admin_added"
	EventAdminRemoved       EventType = "admin_removed"
	EventPriceSet           EventType = "price_set"
	EventPricingDeactivated EventType = "pricing_deactivated"
	EventAppPurchased       EventType = "app_purchased"
	EventBillingPayment     EventType = "billing_payment"
	EventOwnershipTransfer  EventType = "ownership_transferred"
)

// Event immutable record of a committed state transition
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	AppID     uint64                 `json:"app_id,omitempty"`
	Actor     Account                `json:"actor"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// NewEvent builds an event stamped with a fresh id
func NewEvent(typ EventType, appID uint64, actor Account, payload map[string]interface{}, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		AppID:     appID,
		Actor:     actor,
		Payload:   payload,
		Timestamp: at.Unix(),
	}
}
