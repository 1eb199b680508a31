package testutil

import (
	"strings"
	"sync"

	"github.com/mcoot/arenactl/internal/model"
)

// RecordingSink captures delivered chat messages for assertions
type RecordingSink struct {
	mu       sync.Mutex
	messages []model.ChatMessage
}

// NewRecordingSink creates an empty RecordingSink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Deliver records the message
func (s *RecordingSink) Deliver(msg model.ChatMessage) error {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

// Messages returns a copy of everything delivered so far
func (s *RecordingSink) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.ChatMessage, len(s.messages))
	copy(result, s.messages)
	return result
}

// Lines returns the text of every delivered message
func (s *RecordingSink) Lines() []string {
	msgs := s.Messages()
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.Text
	}
	return lines
}

// Last returns the text of the most recent message, or "" if none
func (s *RecordingSink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1].Text
}

// Joined returns all lines joined with newlines
func (s *RecordingSink) Joined() string {
	return strings.Join(s.Lines(), "\n")
}

// Reset discards recorded messages
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}
