package realtime

import "go.uber.org/zap"

// Dispatcher pushes events to every live session of a target user.
// Best-effort and non-durable: an empty room or a full session buffer is not
// an error, because the durable stores are the replay path. Delivery failures
// are logged here and never surfaced to callers.
type Dispatcher struct {
	registry *Registry
	log      *zap.Logger
}

func NewDispatcher(registry *Registry, log *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// Publish fans ev out to all of userID's sessions. Succeeds silently when the
// user has no live session. Events published by one call reach each session
// in call order; no ordering holds across concurrent Publish calls.
func (d *Dispatcher) Publish(userID string, ev Event) {
	for _, s := range d.registry.SessionsFor(userID) {
		if !s.enqueue(ev) {
			d.log.Warn("dropped event",
				zap.String("user_id", userID),
				zap.String("session_id", s.ID),
				zap.String("event_type", ev.Type),
			)
		}
	}
}
