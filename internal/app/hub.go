package app

import (
	"sync"

	"weekly-quiz-service/internal/domain"
)

const subscriberBuffer = 8

type subscription struct {
	// updated is set once any publish has reached the subscriber; a seed
	// snapshot arriving after that would be older than what it already has.
	updated bool
}

// LeaderboardHub fans leaderboard rewrites out to in-process subscribers, keyed by quiz.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]*subscription
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[string]map[chan domain.Leaderboard]*subscription)}
}

// Register adds a subscriber for quizID before its initial snapshot is known.
// seed delivers that snapshot unless a publish got there first, so reading
// the snapshot after Register never loses an update.
func (h *LeaderboardHub) Register(quizID string) (updates <-chan domain.Leaderboard, seed func(domain.Leaderboard), cancel func()) {
	ch := make(chan domain.Leaderboard, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]*subscription)
		h.subscribers[quizID] = subs
	}
	subs[ch] = &subscription{}
	h.mu.Unlock()

	seed = func(lb domain.Leaderboard) {
		h.mu.Lock()
		defer h.mu.Unlock()
		sub, ok := h.subscribers[quizID][ch]
		if !ok || sub.updated {
			return
		}
		sub.updated = true
		ch <- lb
	}

	cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[quizID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, quizID)
		}
	}
	return ch, seed, cancel
}

// Subscribe registers a channel for quizID that first receives initial.
func (h *LeaderboardHub) Subscribe(quizID string, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch, seed, cancel := h.Register(quizID)
	seed(initial)
	return ch, cancel
}

// Publish delivers lb to every subscriber of lb.QuizID. A subscriber whose
// buffer is full loses its oldest pending snapshot.
func (h *LeaderboardHub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, sub := range h.subscribers[lb.QuizID] {
		sub.updated = true
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// Subscribers counts live subscriptions for quizID.
func (h *LeaderboardHub) Subscribers(quizID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[quizID])
}
