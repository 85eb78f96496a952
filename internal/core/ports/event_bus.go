package ports

import (
	"context"
	"strconv"
)

// Topic names for the publish/subscribe fan-out.
//
//	user:<id>  private per-user channel, auto-joined at connect time
//	lead:<id>  per-lead room, joined and left explicitly by clients
//	global     every connected client; cross-cutting creation events only
const TopicGlobal = "global"

// TopicUser returns the private topic of a user.
func TopicUser(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// TopicLead returns the room topic of a lead.
func TopicLead(leadID int64) string {
	return "lead:" + strconv.FormatInt(leadID, 10)
}

// Server-pushed event names.
const (
	EventNotification     = "notification"
	EventLeadCreated      = "lead:created"
	EventLeadUpdated      = "lead:updated"
	EventLeadStatusChange = "lead:statusChanged"
	EventLeadOwnerChange  = "lead:ownerChanged"
	EventActivityCreated  = "activity:created"
)

// Event is one message delivered through the bus.
type Event struct {
	Topic   string `json:"-"`
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// Subscription is a live feed of events for a single topic.
type Subscription interface {
	// Events yields events until Close is called or the bus shuts down.
	Events() <-chan Event
	Close() error
}

// EventBus is a topic-based publish/subscribe fan-out. Delivery is
// at-most-once to whoever is subscribed to the exact topic string at publish
// time: no queuing, no replay for late subscribers. Constructed once at
// startup and closed on shutdown.
type EventBus interface {
	// Publish delivers the event to current subscribers of topic. Errors are
	// advisory; callers treat publishing as best-effort.
	Publish(ctx context.Context, topic, name string, payload any) error

	// Subscribe opens a feed for topic. The subscription must be closed when
	// the consumer disconnects.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	Close() error
}
