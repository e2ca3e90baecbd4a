package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/pkg/metrics"
)

type subscription struct {
	id       uint64
	listener ports.CompletionListener
}

// CompletionBus delivers completion signals to the listeners registered for
// a student, synchronously and in registration order. Listeners registered
// after a Publish never see it.
type CompletionBus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscription
	logger zerolog.Logger
}

var _ ports.CompletionBus = (*CompletionBus)(nil)

func NewCompletionBus(logger zerolog.Logger) *CompletionBus {
	return &CompletionBus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers listener for studentID. The returned func unregisters
// it and is safe to call more than once.
func (b *CompletionBus) Subscribe(studentID string, listener ports.CompletionListener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[studentID] = append(b.subs[studentID], subscription{id: id, listener: listener})
	b.mu.Unlock()
	metrics.CompletionListeners.Inc()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(studentID, id) })
	}
}

func (b *CompletionBus) unsubscribe(studentID string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[studentID]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		subs = append(subs[:i:i], subs[i+1:]...)
		if len(subs) == 0 {
			delete(b.subs, studentID)
		} else {
			b.subs[studentID] = subs
		}
		metrics.CompletionListeners.Dec()
		return
	}
}

// Publish calls every listener of signal.StudentID. The listener set is
// snapshotted first so listeners may unsubscribe while being called.
func (b *CompletionBus) Publish(signal domain.CompletionSignal) {
	b.mu.Lock()
	snapshot := append([]subscription(nil), b.subs[signal.StudentID]...)
	b.mu.Unlock()

	metrics.CompletionSignalsTotal.Inc()
	b.logger.Debug().
		Str("student_id", signal.StudentID).
		Str("question_id", signal.QuestionID).
		Int("listeners", len(snapshot)).
		Msg("publishing completion signal")

	for _, s := range snapshot {
		s.listener(signal)
	}
}
