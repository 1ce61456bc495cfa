package dispatch

import (
	"context"
	"sync"
	"testing"

	"github.com/jagaapp/jaga/server/models"
	"github.com/jagaapp/jaga/server/push"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeChannel fails sends for tokens listed in failFor & records every
// token it was asked to deliver to.
type fakeChannel struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (f *fakeChannel) Send(ctx context.Context, token string, payload push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, token)
	if f.failFor[token] {
		return errors.New("unregistered device")
	}

	return nil
}

func TestSendAllSkipsTokenlessRecipients(t *testing.T) {
	channel := &fakeChannel{}
	dispatcher := NewDispatcher(channel, nil, zap.NewNop().Sugar())

	recipients := []models.Contact{
		{ID: "a", Name: "mak", NotificationToken: "token-a"},
		{ID: "b", Name: "abah"},
		{ID: "c", Name: "kak long", NotificationToken: "token-c"},
	}

	results := dispatcher.SendAll(context.Background(), Notice{CategoryKey: "fire"}, recipients)
	require.Len(t, results, 3)

	assert.Equal(t, StatusDelivered, results[0].Status)
	assert.Equal(t, StatusSkipped, results[1].Status)
	assert.Equal(t, StatusDelivered, results[2].Status)

	assert.Len(t, channel.sent, 2)
	assert.NotContains(t, channel.sent, "")
}

func TestSendAllFailuresAreIndependent(t *testing.T) {
	channel := &fakeChannel{failFor: map[string]bool{"token-b": true}}
	dispatcher := NewDispatcher(channel, nil, zap.NewNop().Sugar())

	recipients := []models.Contact{
		{ID: "a", NotificationToken: "token-a"},
		{ID: "b", NotificationToken: "token-b"},
		{ID: "c", NotificationToken: "token-c"},
	}

	results := dispatcher.SendAll(context.Background(), Notice{CategoryKey: "snatch"}, recipients)
	require.Len(t, results, 3)

	assert.Equal(t, StatusDelivered, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, StatusDelivered, results[2].Status)

	// result order follows recipient order regardless of goroutine timing
	for i, recipient := range recipients {
		assert.Equal(t, recipient.ID, results[i].ContactID)
	}
}

func TestSendAllCarriesNoticeContent(t *testing.T) {
	var got push.Payload
	channel := &captureChannel{payload: &got}
	dispatcher := NewDispatcher(channel, nil, zap.NewNop().Sugar())

	notice := Notice{
		CategoryKey: "wildAnimal",
		Title:       "wildAnimal",
		Body:        "HELP!\nThere is a dangerous wild animal here",
	}
	dispatcher.SendAll(context.Background(), notice, []models.Contact{
		{ID: "a", NotificationToken: "token-a"},
	})

	assert.Equal(t, notice.Title, got.Title)
	assert.Equal(t, notice.Body, got.Body)
	assert.Equal(t, "jaga://emergency-contact", got.Link)
	assert.Equal(t, notice.CategoryKey, got.Data["type"])
	assert.Equal(t, notice.Body, got.Data["message"])
}

func TestSendAllWithNoRecipients(t *testing.T) {
	dispatcher := NewDispatcher(&fakeChannel{}, nil, zap.NewNop().Sugar())

	results := dispatcher.SendAll(context.Background(), Notice{}, nil)
	assert.Empty(t, results)
}

type captureChannel struct {
	mu      sync.Mutex
	payload *push.Payload
}

func (c *captureChannel) Send(ctx context.Context, token string, payload push.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	*c.payload = payload
	return nil
}
