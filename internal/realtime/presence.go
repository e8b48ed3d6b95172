package realtime

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const numShards = 64

// Session is one live connection's handle in the registry plus its outbound
// event queue. The queue is drained by a single writer, so events enqueued by
// one Publish call reach the client in call order.
type Session struct {
	ID       string
	JoinedAt time.Time

	mu     sync.Mutex
	events chan Event
	closed bool
}

// NewSession creates a session handle with a buffered outbound queue.
func NewSession(buffer int) *Session {
	if buffer <= 0 {
		buffer = 256
	}
	return &Session{
		ID:       uuid.NewString(),
		JoinedAt: time.Now().UTC(),
		events:   make(chan Event, buffer),
	}
}

// Events exposes the outbound queue to the session's writer.
func (s *Session) Events() <-chan Event { return s.events }

// enqueue offers ev to the session without blocking. Returns false when the
// session is closed or its buffer is full; the caller decides what to log.
func (s *Session) enqueue(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue. Idempotent; safe against concurrent enqueue.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

type shard struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Session // userID -> sessionID -> session
}

// Registry maps user identities to their live sessions. It is sharded by
// user id so connect/disconnect/dispatch traffic for unrelated users never
// contends on one lock. Constructed once at startup and injected everywhere
// it is needed; state is process-memory only and lost on restart.
type Registry struct {
	shards [numShards]shard
	owner  sync.Map // sessionID -> userID, for Leave without a user id
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].rooms = make(map[string]map[string]*Session)
	}
	return r
}

func (r *Registry) shardFor(userID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &r.shards[h.Sum32()%numShards]
}

// Join adds the session to userID's room. Idempotent on repeat join; a join
// for a different user first leaves the previous room.
func (r *Registry) Join(userID string, s *Session) {
	if prev, ok := r.owner.Load(s.ID); ok {
		if prev.(string) == userID {
			return
		}
		r.Leave(s)
	}
	r.owner.Store(s.ID, userID)

	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	room, ok := sh.rooms[userID]
	if !ok {
		room = make(map[string]*Session)
		sh.rooms[userID] = room
	}
	room[s.ID] = s
}

// Leave removes the session from whichever room holds it. A session that
// never joined is a no-op — disconnect races are expected and harmless.
func (r *Registry) Leave(s *Session) {
	v, ok := r.owner.LoadAndDelete(s.ID)
	if !ok {
		return
	}
	userID := v.(string)

	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if room, ok := sh.rooms[userID]; ok {
		delete(room, s.ID)
		if len(room) == 0 {
			delete(sh.rooms, userID)
		}
	}
}

// SessionsFor returns a snapshot of userID's current sessions, possibly empty.
func (r *Registry) SessionsFor(userID string) []*Session {
	sh := r.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	room := sh.rooms[userID]
	if len(room) == 0 {
		return nil
	}
	out := make([]*Session, 0, len(room))
	for _, s := range room {
		out = append(out, s)
	}
	return out
}
