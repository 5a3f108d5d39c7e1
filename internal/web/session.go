package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/drummonds/gpframes/internal/flow"
	"github.com/drummonds/gpframes/internal/frame"
)

const sessionCookie = "gpframes_session"

// Store keeps sessions in memory for the life of the process.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*entry
	compositor *frame.Compositor
	idle       time.Duration
}

type entry struct {
	session  *flow.Session
	lastSeen time.Time
}

func NewStore(c *frame.Compositor, idle time.Duration) *Store {
	return &Store{sessions: make(map[string]*entry), compositor: c, idle: idle}
}

// Session returns the caller's session, starting a new one and setting the
// cookie when the request carries no known id.
func (st *Store) Session(w http.ResponseWriter, r *http.Request) *flow.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if e, ok := st.sessions[c.Value]; ok {
			e.lastSeen = now
			return e.session
		}
	}
	s := flow.NewSession(st.compositor)
	st.sessions[s.ID] = &entry{session: s, lastSeen: now}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// closeSession waits for the session's running operation, so it is never
// called with the store locked.
var closeSession = (*flow.Session).Close

// Expire closes sessions idle for longer than the store's limit.
func (st *Store) Expire(now time.Time) int {
	if st.idle <= 0 {
		return 0
	}
	var idle []*flow.Session
	st.mu.Lock()
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.idle {
			idle = append(idle, e.session)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range idle {
		closeSession(s)
	}
	return len(idle)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close releases every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := make([]*flow.Session, 0, len(st.sessions))
	for id, e := range st.sessions {
		all = append(all, e.session)
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	for _, s := range all {
		closeSession(s)
	}
}
