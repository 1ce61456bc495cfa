package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/jagaapp/jaga/server/dispatch"
	"github.com/jagaapp/jaga/server/i18n"
	"github.com/jagaapp/jaga/server/models"
	"github.com/jagaapp/jaga/server/registry"
	"github.com/jagaapp/jaga/server/speech"
	"go.uber.org/zap"
)

const (
	// DefaultDwellTime is the window a user has to mark themself safe
	// after notifying their contacts.
	DefaultDwellTime = 3000 * time.Millisecond

	helpCallRepeats  = 6
	helpCallInterval = time.Second
)

// Manager owns the active incidents, one per account at most. It is the
// only writer of incident state; handlers & jobs go through it.
type Manager struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	synth      speech.Synthesizer
	dwell      time.Duration
	logg       *zap.SugaredLogger

	mu     sync.Mutex
	active map[uint]*Incident
}

func NewManager(
	contactRegistry *registry.Registry,
	dispatcher *dispatch.Dispatcher,
	synth speech.Synthesizer,
	dwell time.Duration,
	logg *zap.SugaredLogger,
) *Manager {
	if dwell <= 0 {
		dwell = DefaultDwellTime
	}

	return &Manager{
		registry:   contactRegistry,
		dispatcher: dispatcher,
		synth:      synth,
		dwell:      dwell,
		logg:       logg,
		active:     map[uint]*Incident{},
	}
}

// Select starts a fresh incident in Detailing for the account. Selecting
// while an incident is still active(resolved ones included, until Reset)
// is a contract violation & leaves the current incident untouched.
func (m *Manager) Select(accountID uint, category Category) (IncidentView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[accountID]; ok {
		return IncidentView{}, ErrInvalidTransition
	}

	inc := newIncident(accountID, category, time.Now())
	m.active[accountID] = inc

	m.logg.Infof("incident %v opened for account %v (category=%v)", inc.ID, accountID, category.Key)
	return inc.snapshot(), nil
}

// Current returns a snapshot of the account's active incident, if any.
func (m *Manager) Current(accountID uint) (IncidentView, bool) {
	inc, ok := m.incident(accountID)
	if !ok {
		return IncidentView{}, false
	}
	return inc.snapshot(), true
}

// Notify fans the alert out to the account's emergency contacts & advances
// the incident to AwaitingResponse whatever the delivery outcome was. An
// empty fan-out set is a data condition for the UI, not an error.
func (m *Manager) Notify(ctx context.Context, accountID uint) (IncidentView, error) {
	inc, ok := m.incident(accountID)
	if !ok {
		return IncidentView{}, ErrInvalidTransition
	}

	if err := inc.beginDispatch(); err != nil {
		return IncidentView{}, err
	}

	recipients := m.registry.EmergencyContacts(accountID)
	notice := dispatch.Notice{
		CategoryKey: inc.Category.Key,
		Title:       inc.Category.DisplayLabel(i18n.DefaultLanguage),
		Body:        inc.Category.HelpMessage(i18n.DefaultLanguage),
	}

	results := m.dispatcher.SendAll(ctx, notice, recipients)
	inc.completeDispatch(results, m.dwell, m.recordResolution)

	m.logg.Infof("incident %v dispatched to %v contact(s), awaiting response", inc.ID, len(recipients))
	return inc.snapshot(), nil
}

// MarkSafe resolves the incident Safe, cancelling the dwell timer. If the
// timer already fired, the incident stays StillAlerting & the call reports
// ErrInvalidTransition.
func (m *Manager) MarkSafe(accountID uint) (IncidentView, error) {
	inc, ok := m.incident(accountID)
	if !ok {
		return IncidentView{}, ErrInvalidTransition
	}

	if err := inc.markSafe(); err != nil {
		return IncidentView{}, err
	}

	m.recordResolution(inc)
	return inc.snapshot(), nil
}

// Reset discards a resolved incident, returning the account to Idle.
func (m *Manager) Reset(accountID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.active[accountID]
	if !ok || !inc.isResolved() {
		return ErrInvalidTransition
	}

	delete(m.active, accountID)
	m.logg.Infof("incident %v reset for account %v", inc.ID, accountID)
	return nil
}

// Abandon tears down an unresolved incident when the client leaves the
// flow, cancelling the dwell timer so a stale expiry can't fire against a
// discarded instance. Abandoning with no active incident is a no-op.
func (m *Manager) Abandon(accountID uint) {
	m.mu.Lock()
	inc, ok := m.active[accountID]
	if ok {
		delete(m.active, accountID)
	}
	m.mu.Unlock()

	if ok {
		inc.abandon()
		m.logg.Infof("incident %v abandoned by account %v", inc.ID, accountID)
	}
}

// CallForHelp speaks the localized distress call a few times over, the way
// the mobile client's HELP button does. Fire-and-forget: a missing or
// failing speech channel only produces log noise.
func (m *Manager) CallForHelp(ctx context.Context, lang string) {
	if m.synth == nil {
		m.logg.Warn("no speech channel wired, skipping help call")
		return
	}

	text := i18n.Translate(lang, "helpMe")
	params := speech.Params{Rate: 1.0, Pitch: 1.2, Volume: 1.0, Language: i18n.SpeechTag(lang)}

	go func() {
		for i := 0; i < helpCallRepeats; i++ {
			if err := m.synth.Speak(text, params); err != nil {
				m.logg.Warnf("help call: %v", err)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(helpCallInterval):
			}
		}
	}()
}

// ReapAbandoned drops incidents that never progressed past Detailing &
// resolved incidents nobody reset, so torn-down clients don't leak
// incidents forever. Returns how many were reaped.
func (m *Manager) ReapAbandoned(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	now := time.Now()
	for accountID, inc := range m.active {
		if inc.ageAt(now) < maxAge {
			continue
		}
		if inc.snapshot().State == StateAwaitingResponse {
			// its own dwell timer resolves it shortly
			continue
		}

		inc.abandon()
		delete(m.active, accountID)
		reaped++
		m.logg.Infof("reaped stale incident %v for account %v", inc.ID, accountID)
	}

	return reaped
}

func (m *Manager) incident(accountID uint) (*Incident, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.active[accountID]
	return inc, ok
}

// recordResolution writes the audit row for a resolved incident.
// Best-effort: a failed write never affects the state machine.
func (m *Manager) recordResolution(inc *Incident) {
	view := inc.snapshot()

	entry := models.IncidentLog{
		AccountID:     inc.AccountID,
		Category:      view.Category.Key,
		Label:         view.Category.Label,
		Outcome:       string(view.Outcome),
		StartedAt:     view.StartedAt,
		ResolvedAt:    time.Now(),
		NotifiedCount: len(view.NotifiedTo),
	}

	if err := models.CreateIncidentLog(&entry); err != nil {
		m.logg.Errorf("failed to record incident %v resolution: %v", inc.ID, err)
	}
}
