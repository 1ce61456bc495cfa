package push

import (
	"context"
	"testing"

	"github.com/jagaapp/jaga/server/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource hands out a canned token & lets tests fire refresh events by
// hand.
type fakeSource struct {
	token         string
	err           error
	refresh       func(token string)
	subscriptions int
	cancellations int
}

func (f *fakeSource) LocalToken(ctx context.Context) (string, error) {
	return f.token, f.err
}

func (f *fakeSource) OnRefresh(fn func(token string)) Unsubscribe {
	f.refresh = fn
	f.subscriptions++
	return func() { f.cancellations++ }
}

func savedToken(t *testing.T, accountID uint) string {
	t.Helper()

	record, err := models.FindAccountToken(accountID)
	if err != nil {
		return ""
	}
	return record.Token
}

func TestBootstrapSavesLocalToken(t *testing.T) {
	models.InitializeTestDb()

	manager := NewLifecycleManager(&fakeSource{token: "device-token"}, zap.NewNop().Sugar())
	manager.Bootstrap(context.Background(), 1)

	assert.Equal(t, "device-token", savedToken(t, 1))
}

func TestBootstrapSwallowsSourceFailures(t *testing.T) {
	models.InitializeTestDb()
	logg := zap.NewNop().Sugar()

	// denied permission, unsupported device & absent source all degrade
	// silently
	NewLifecycleManager(&fakeSource{err: errors.New("permission denied")}, logg).Bootstrap(context.Background(), 1)
	NewLifecycleManager(&fakeSource{token: ""}, logg).Bootstrap(context.Background(), 1)
	NewLifecycleManager(nil, logg).Bootstrap(context.Background(), 1)

	assert.Empty(t, savedToken(t, 1))
}

func TestRegisterOverwritesPreviousToken(t *testing.T) {
	models.InitializeTestDb()

	manager := NewLifecycleManager(nil, zap.NewNop().Sugar())
	manager.Register(1, "first-token")
	manager.Register(1, "second-token")

	assert.Equal(t, "second-token", savedToken(t, 1), "the latest write wins")

	manager.Register(1, "")
	assert.Equal(t, "second-token", savedToken(t, 1), "empty tokens are ignored")
}

func TestRefreshUpdatesCurrentAccount(t *testing.T) {
	models.InitializeTestDb()

	source := &fakeSource{token: "initial"}
	manager := NewLifecycleManager(source, zap.NewNop().Sugar())

	currentAccount := uint(1)
	manager.Subscribe(func() uint { return currentAccount })
	require.NotNil(t, source.refresh)

	source.refresh("rotated")
	assert.Equal(t, "rotated", savedToken(t, 1))

	// refresh with nobody signed in is dropped
	currentAccount = 0
	source.refresh("orphaned")
	assert.Equal(t, "rotated", savedToken(t, 1))
}

func TestSubscribeIsIdempotent(t *testing.T) {
	models.InitializeTestDb()

	source := &fakeSource{}
	manager := NewLifecycleManager(source, zap.NewNop().Sugar())

	manager.Subscribe(func() uint { return 1 })
	manager.Subscribe(func() uint { return 1 })
	assert.Equal(t, 1, source.subscriptions)

	manager.Close()
	assert.Equal(t, 1, source.cancellations)

	// closing twice is harmless
	manager.Close()
	assert.Equal(t, 1, source.cancellations)
}
