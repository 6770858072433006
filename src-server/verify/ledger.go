// Package verify holds pending math-captcha challenges, keyed by the user
// that asked to be verified.
//
// The ledger only does bookkeeping. Granting roles and logging a successful
// verification is up to the caller.
package verify

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

type Outcome int

const (
	NoPendingChallenge Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "no_pending_challenge"
	}
}

// operands are drawn from [minOperand, maxOperand]
const (
	minOperand = 1
	maxOperand = 10
)

type Challenge struct {
	RequesterID    string
	ExpectedAnswer int
}

type Ledger struct {
	mu      sync.Mutex
	pending map[string]Challenge
	intN    func(n int) int
}

type Option func(*Ledger)

// WithIntN replaces the random source; intN(n) must return a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(l *Ledger) {
		l.intN = intN
	}
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		pending: make(map[string]Challenge),
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) operand() int {
	return minOperand + l.intN(maxOperand-minOperand+1)
}

// Begin draws a new challenge for requesterID, replacing any pending one,
// and returns the two operands to show to the user.
func (l *Ledger) Begin(requesterID string) (a, b int) {
	a, b = l.operand(), l.operand()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending[requesterID] = Challenge{
		RequesterID:    requesterID,
		ExpectedAnswer: a + b,
	}
	return a, b
}

// Submit checks rawText against the pending challenge of requesterID.
// Anything that is not the expected integer counts as Incorrect and keeps
// the challenge around for another attempt.
func (l *Ledger) Submit(requesterID, rawText string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	challenge, ok := l.pending[requesterID]
	if !ok {
		return NoPendingChallenge
	}
	answer, err := strconv.Atoi(strings.TrimSpace(rawText))
	if err != nil || answer != challenge.ExpectedAnswer {
		return Incorrect
	}
	delete(l.pending, requesterID)
	return Correct
}

func (l *Ledger) Pending(requesterID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[requesterID]
	return ok
}

// Len returns the number of challenges waiting for an answer.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
