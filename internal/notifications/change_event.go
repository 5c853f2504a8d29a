package notifications

import (
	"time"

	"dispatch/internal/core/domain/model/order"
)

// ChangeEvent is the normalized notification derived from one committed order
// mutation. It is the payload subscribers receive on every topic the event
// fans out to, so it carries everything a tracking client needs to render the
// update without a follow-up read: current status, the ledger entry that
// produced it, and the parties involved.
type ChangeEvent struct {
	Type             string        `json:"type"`
	OrderID          string        `json:"orderId"`
	CustomerID       string        `json:"customerId"`
	AgentID          *string       `json:"agentId,omitempty"`
	Status           string        `json:"status"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	LastHistoryEntry *HistoryEntry `json:"lastHistoryEntry,omitempty"`
}

// HistoryEntry is the wire form of the ledger entry behind the change.
type HistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Position `json:"location,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// Position is a longitude/latitude pair in the wire payload.
type Position struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewChangeEvent derives the wire event from a committed order snapshot. The
// update time is the timestamp of the newest ledger entry, since every status
// transition appends exactly one.
func NewChangeEvent(snapshot *order.Order) ChangeEvent {
	event := ChangeEvent{
		Type:       "order_changed",
		OrderID:    snapshot.ID().String(),
		CustomerID: snapshot.CustomerID().String(),
		Status:     snapshot.Status().String(),
	}

	if agentID := snapshot.AssignedAgent(); agentID != nil {
		id := agentID.String()
		event.AgentID = &id
	}

	if last, ok := snapshot.LastHistoryEntry(); ok {
		event.UpdatedAt = last.Timestamp
		entry := HistoryEntry{
			Status:    last.Status.String(),
			Timestamp: last.Timestamp,
			Note:      last.Note,
		}
		if last.Location != nil {
			entry.Location = &Position{
				Longitude: last.Location.Longitude(),
				Latitude:  last.Location.Latitude(),
			}
		}
		event.LastHistoryEntry = &entry
	}

	return event
}

// Topics returns the broadcast topics the event fans out to: the order room,
// the owning customer, and the assigned agent when the order has one.
func (e ChangeEvent) Topics() []string {
	topics := []string{"order:" + e.OrderID, "user:" + e.CustomerID}
	if e.AgentID != nil {
		topics = append(topics, "agent:"+*e.AgentID)
	}
	return topics
}
