// ABOUTME: Events the dispatcher publishes about scripts and deliveries
// ABOUTME: Delivered in publication order to every subscriber

package host

import (
	"fmt"
	"time"

	"github.com/mauromedda/hookwire/pkg/hook"
)

// EventType discriminates Event.
type EventType uint8

const (
	// EventRegistered follows a successful registration.
	EventRegistered EventType = iota + 1
	// EventUnregistered follows removal of a script.
	EventUnregistered
	// EventStateChanged follows Activate or Deactivate changing the state.
	EventStateChanged
	// EventDelivered follows a successful delivery.
	EventDelivered
	// EventFailed follows a failed delivery.
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "registered"
	case EventUnregistered:
		return "unregistered"
	case EventStateChanged:
		return "state-changed"
	case EventDelivered:
		return "delivered"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event describes something that happened to a script.
type Event struct {
	Type     EventType
	Script   string
	Kind     hook.Kind
	State    State
	Err      error
	Duration time.Duration
}
