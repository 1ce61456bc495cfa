package escalation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jagaapp/jaga/server/dispatch"
)

// ErrInvalidTransition flags state machine misuse. It is a programming
// contract violation, not a user-facing condition.
var ErrInvalidTransition = errors.New("invalid incident state transition")

type State string

const (
	StateDetailing        State = "detailing"
	StateDispatching      State = "dispatching"
	StateAwaitingResponse State = "awaiting_response"
	StateResolved         State = "resolved"
)

type Outcome string

const (
	OutcomeSafe          Outcome = "safe"
	OutcomeStillAlerting Outcome = "still_alerting"
)

// Incident is one run of the escalation state machine for a single chosen
// category. It lives entirely in memory; only its resolution is logged.
//
// All transitions are serialized on the incident mutex so the race between
// the dwell timer & MarkSafe collapses to whoever locks first; the first
// transition into Resolved wins & every later attempt is a no-op or an
// ErrInvalidTransition.
type Incident struct {
	ID        string
	AccountID uint
	Category  Category

	mu         sync.Mutex
	state      State
	outcome    Outcome
	startedAt  time.Time
	resolvedAt time.Time
	deadline   time.Time
	timer      *time.Timer
	notified   map[string]bool
	results    []dispatch.DeliveryResult
}

// IncidentView is an immutable snapshot handed to the presentation layer,
// which renders state instead of owning it.
type IncidentView struct {
	ID         string                    `json:"id"`
	Category   Category                  `json:"category"`
	State      State                     `json:"state"`
	Outcome    Outcome                   `json:"outcome,omitempty"`
	StartedAt  time.Time                 `json:"started_at"`
	Deadline   *time.Time                `json:"deadline,omitempty"`
	NotifiedTo []string                  `json:"notified_contact_ids"`
	Results    []dispatch.DeliveryResult `json:"delivery_results,omitempty"`
}

func newIncident(accountID uint, category Category, startedAt time.Time) *Incident {
	return &Incident{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Category:  category,
		state:     StateDetailing,
		startedAt: startedAt,
		notified:  map[string]bool{},
	}
}

// beginDispatch moves Detailing -> Dispatching.
func (inc *Incident) beginDispatch() error {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	if inc.state != StateDetailing {
		return ErrInvalidTransition
	}

	inc.state = StateDispatching
	return nil
}

// completeDispatch records the fan-out results & moves Dispatching ->
// AwaitingResponse with a fresh single-shot dwell timer. It runs regardless
// of delivery outcome; a failed notification must not block the user's own
// escalation flow.
func (inc *Incident) completeDispatch(results []dispatch.DeliveryResult, dwell time.Duration, onExpiry func(*Incident)) {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	// the incident may have been abandoned while the fan-out was in
	// flight; never arm a dwell timer against a torn-down instance
	if inc.state != StateDispatching {
		return
	}

	inc.results = append(inc.results, results...)
	for _, result := range results {
		if result.Status == dispatch.StatusDelivered {
			inc.notified[result.ContactID] = true
		}
	}

	inc.state = StateAwaitingResponse
	inc.deadline = time.Now().Add(dwell)
	inc.timer = time.AfterFunc(dwell, func() {
		if inc.expire() {
			onExpiry(inc)
		}
	})
}

// expire is the dwell timer callback. The unattended outcome is
// StillAlerting: the system assumes danger persists unless told otherwise.
// Reports whether this call resolved the incident.
func (inc *Incident) expire() bool {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	if inc.state != StateAwaitingResponse {
		return false
	}

	inc.resolve(OutcomeStillAlerting)
	return true
}

// markSafe resolves the incident Safe. Legal from Detailing or
// AwaitingResponse; a pending dwell timer is cancelled unconditionally.
func (inc *Incident) markSafe() error {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	if inc.state != StateDetailing && inc.state != StateAwaitingResponse {
		return ErrInvalidTransition
	}

	inc.resolve(OutcomeSafe)
	return nil
}

// abandon tears the incident down before resolution, cancelling the dwell
// timer so a stale expiry can't fire against a discarded instance.
func (inc *Incident) abandon() {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	inc.stopTimer()
	if inc.state != StateResolved {
		inc.state = StateResolved
		inc.outcome = OutcomeStillAlerting
		inc.resolvedAt = time.Now()
	}
}

// resolve must be called with the mutex held.
func (inc *Incident) resolve(outcome Outcome) {
	inc.stopTimer()
	inc.state = StateResolved
	inc.outcome = outcome
	inc.resolvedAt = time.Now()
}

func (inc *Incident) stopTimer() {
	if inc.timer != nil {
		inc.timer.Stop()
		inc.timer = nil
	}
}

func (inc *Incident) isResolved() bool {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	return inc.state == StateResolved
}

func (inc *Incident) ageAt(now time.Time) time.Duration {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	return now.Sub(inc.startedAt)
}

func (inc *Incident) snapshot() IncidentView {
	inc.mu.Lock()
	defer inc.mu.Unlock()

	view := IncidentView{
		ID:         inc.ID,
		Category:   inc.Category,
		State:      inc.state,
		StartedAt:  inc.startedAt,
		NotifiedTo: []string{},
		Results:    inc.results,
	}

	if inc.state == StateResolved {
		view.Outcome = inc.outcome
	}
	if inc.state == StateAwaitingResponse {
		deadline := inc.deadline
		view.Deadline = &deadline
	}
	for contactID := range inc.notified {
		view.NotifiedTo = append(view.NotifiedTo, contactID)
	}

	return view
}
