package alerts

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type Level string

const (
	LevelPrimary   Level = "primary"
	LevelSecondary Level = "secondary"
	LevelSuccess   Level = "success"
	LevelDanger    Level = "danger"
	LevelWarning   Level = "warning"
	LevelInfo      Level = "info"
	LevelLight     Level = "light"
	LevelDark      Level = "dark"
	LevelCTA       Level = "cta"
)

var validLevels = map[Level]bool{
	LevelPrimary:   true,
	LevelSecondary: true,
	LevelSuccess:   true,
	LevelDanger:    true,
	LevelWarning:   true,
	LevelInfo:      true,
	LevelLight:     true,
	LevelDark:      true,
	LevelCTA:       true,
}

type Message struct {
	ID      string `json:"id"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func New(level Level, msg string) (Message, error) {
	if !validLevels[level] {
		return Message{}, fmt.Errorf("invalid alert level %q", level)
	}
	return Message{ID: "alert-" + uuid.NewString(), Level: level, Message: msg}, nil
}

// Store holds the transient messages other components report outcomes
// through. One instance is created at startup and injected everywhere;
// there is no teardown beyond Clear.
type Store struct {
	mu      sync.Mutex
	storage map[string]Message
	order   []string
}

func NewStore() *Store {
	return &Store{storage: map[string]Message{}}
}

func (s *Store) Push(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.storage[m.ID]; !ok {
		s.order = append(s.order, m.ID)
	}
	s.storage[m.ID] = m
}

func (s *Store) Pop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.storage[id]; !ok {
		return
	}
	delete(s.storage, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage = map[string]Message{}
	s.order = nil
}

// Values returns messages in insertion order.
func (s *Store) Values() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.storage[id])
	}
	return out
}

func (s *Store) push(level Level, msg string) Message {
	m, err := New(level, msg)
	if err != nil {
		// Only reachable with a level outside the enum, which the
		// helpers below cannot produce.
		return Message{}
	}
	s.Push(m)
	return m
}

func (s *Store) Success(msg string) Message { return s.push(LevelSuccess, msg) }
func (s *Store) Danger(msg string) Message  { return s.push(LevelDanger, msg) }
func (s *Store) Warning(msg string) Message { return s.push(LevelWarning, msg) }
func (s *Store) Info(msg string) Message    { return s.push(LevelInfo, msg) }
