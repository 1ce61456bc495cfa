package dispatch

import (
	"context"
	"sync"

	"github.com/jagaapp/jaga/server/models"
	"github.com/jagaapp/jaga/server/push"
	"github.com/jagaapp/jaga/server/twilio"
	"go.uber.org/zap"
)

// deepLink is the screen the receiving client opens from the notification.
const deepLink = "jaga://emergency-contact"

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

type DeliveryResult struct {
	ContactID string `json:"contact_id"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Notice is the resolved content of one escalation, shared by every
// recipient of the fan-out.
type Notice struct {
	CategoryKey string
	Title       string
	Body        string
}

type Dispatcher struct {
	channel push.Channel
	sms     *twilio.Notifier
	logg    *zap.SugaredLogger
}

func NewDispatcher(channel push.Channel, sms *twilio.Notifier, logg *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{channel: channel, sms: sms, logg: logg}
}

// SendAll attempts delivery to every eligible recipient exactly once,
// concurrently. A recipient without a notification token is skipped, one
// recipient's failure never aborts the others, and nothing is retried. The
// result order matches the recipient order.
func (d *Dispatcher) SendAll(ctx context.Context, notice Notice, recipients []models.Contact) []DeliveryResult {
	results := make([]DeliveryResult, len(recipients))

	wg := sync.WaitGroup{}
	for i, recipient := range recipients {
		if recipient.NotificationToken == "" {
			results[i] = DeliveryResult{ContactID: recipient.ID, Status: StatusSkipped}
			continue
		}

		wg.Add(1)
		go func(i int, recipient models.Contact) {
			defer wg.Done()
			results[i] = d.send(ctx, notice, recipient)
		}(i, recipient)
	}
	wg.Wait()

	d.notifyBySms(notice, recipients)

	return results
}

func (d *Dispatcher) send(ctx context.Context, notice Notice, recipient models.Contact) DeliveryResult {
	payload := push.Payload{
		Title: notice.Title,
		Body:  notice.Body,
		Link:  deepLink,
		Data: map[string]string{
			"type":    notice.CategoryKey,
			"message": notice.Body,
		},
	}

	if err := d.channel.Send(ctx, recipient.NotificationToken, payload); err != nil {
		d.logg.Warnf("push to contact %v failed: %v", recipient.ID, err)
		return DeliveryResult{ContactID: recipient.ID, Status: StatusFailed, Error: err.Error()}
	}

	return DeliveryResult{ContactID: recipient.ID, Status: StatusDelivered}
}

// notifyBySms texts recipients that have a phone number on file. This is a
// best-effort side channel; outcomes are logged & never reflected in the
// push results.
func (d *Dispatcher) notifyBySms(notice Notice, recipients []models.Contact) {
	if d.sms == nil || !d.sms.Enabled() {
		return
	}

	for _, recipient := range recipients {
		if recipient.PhoneNumber == "" {
			continue
		}

		go func(recipient models.Contact) {
			if err := d.sms.SendMessage(recipient.PhoneNumber, notice.Body); err != nil {
				d.logg.Warnf("sms to contact %v failed: %v", recipient.ID, err)
			}
		}(recipient)
	}
}
