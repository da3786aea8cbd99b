package answer

import "sync"

// Session history limits.
const (
	DefaultMaxTurns    = 10
	DefaultPromptTurns = 3
	DefaultMaxSessions = 1000
)

// Turn is one user message and the reply it got.
type Turn struct {
	User      string
	Assistant string
}

// Sessions keeps recent chat turns per session id in memory.
// When maxSessions is reached the oldest session is evicted.
type Sessions struct {
	mu          sync.Mutex
	turns       map[string][]Turn
	order       []string
	maxTurns    int
	maxSessions int
}

// NewSessions creates a session store. Non-positive limits take the defaults.
func NewSessions(maxTurns, maxSessions int) *Sessions {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Sessions{
		turns:       make(map[string][]Turn),
		maxTurns:    maxTurns,
		maxSessions: maxSessions,
	}
}

// Append records a turn, keeping only the last maxTurns for the session.
func (s *Sessions) Append(sessionID string, t Turn) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	hist, ok := s.turns[sessionID]
	if !ok {
		if len(s.order) >= s.maxSessions {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.turns, oldest)
		}
		s.order = append(s.order, sessionID)
	}
	hist = append(hist, t)
	if len(hist) > s.maxTurns {
		hist = append([]Turn(nil), hist[len(hist)-s.maxTurns:]...)
	}
	s.turns[sessionID] = hist
}

// Recent returns up to n most recent turns, oldest first.
func (s *Sessions) Recent(sessionID string, n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := s.turns[sessionID]
	if n <= 0 || len(hist) == 0 {
		return nil
	}
	start := max(len(hist)-n, 0)
	out := make([]Turn, len(hist)-start)
	copy(out, hist[start:])
	return out
}

// Len returns the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
