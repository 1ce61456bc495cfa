package push

import (
	"context"
	"sync"

	"github.com/jagaapp/jaga/server/models"
	"go.uber.org/zap"
)

// LifecycleManager keeps the signed-in account's own push token current so
// that other accounts' escalations can reach this one. It is best-effort
// infrastructure: every failure here is logged & swallowed, a bad token
// write must never block sign-in.
type LifecycleManager struct {
	source Source
	logg   *zap.SugaredLogger

	subscribeOnce sync.Once
	unsubscribe   Unsubscribe
}

func NewLifecycleManager(source Source, logg *zap.SugaredLogger) *LifecycleManager {
	return &LifecycleManager{source: source, logg: logg}
}

// Bootstrap obtains the local device token & writes it to the account's
// token record. A source that cannot produce a token(denied permission,
// unsupported device) is a non-fatal condition.
func (lm *LifecycleManager) Bootstrap(ctx context.Context, accountID uint) {
	if lm.source == nil || accountID == 0 {
		return
	}

	token, err := lm.source.LocalToken(ctx)
	if err != nil {
		lm.logg.Warnf("push token unavailable for account %v: %v", accountID, err)
		return
	}
	if token == "" {
		lm.logg.Warnf("push source produced no token for account %v", accountID)
		return
	}

	lm.save(accountID, token)
}

// Register is the client-driven write path: a device that already holds
// its own token reports it directly. Same best-effort semantics as
// Bootstrap.
func (lm *LifecycleManager) Register(accountID uint, token string) {
	if accountID == 0 || token == "" {
		return
	}

	lm.save(accountID, token)
}

// Subscribe establishes the process-wide refresh subscription exactly once.
// Each refresh event re-runs the bootstrap write path for whichever account
// currentAccount resolves at that moment.
func (lm *LifecycleManager) Subscribe(currentAccount func() uint) {
	if lm.source == nil {
		return
	}

	lm.subscribeOnce.Do(func() {
		lm.unsubscribe = lm.source.OnRefresh(func(token string) {
			accountID := currentAccount()
			if accountID == 0 || token == "" {
				return
			}
			lm.save(accountID, token)
		})
	})
}

// Close cancels the refresh subscription. Safe to call without a prior
// Subscribe.
func (lm *LifecycleManager) Close() {
	if lm.unsubscribe != nil {
		lm.unsubscribe()
		lm.unsubscribe = nil
	}
}

func (lm *LifecycleManager) save(accountID uint, token string) {
	if err := models.SaveAccountToken(accountID, token); err != nil {
		lm.logg.Errorf("failed to save push token for account %v: %v", accountID, err)
		return
	}
	lm.logg.Infof("push token updated for account %v", accountID)
}
