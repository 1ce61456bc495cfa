package twilio

import (
	"fmt"

	"github.com/jagaapp/jaga/shared"
	twilioSdk "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Notifier texts emergency contacts over SMS as a side channel next to the
// push fan-out, for contacts that have a phone number on file.
type Notifier struct {
	client   *twilioSdk.RestClient
	config   shared.Twilio
	logg     *zap.SugaredLogger
	testMode bool
}

func NewNotifier(config shared.Twilio, logg *zap.SugaredLogger, testMode bool) *Notifier {
	client := twilioSdk.NewRestClientWithParams(twilioSdk.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &Notifier{
		client:   client,
		config:   config,
		logg:     logg,
		testMode: testMode,
	}
}

// Enabled reports whether the notifier has credentials to send with.
func (n *Notifier) Enabled() bool {
	return n.config.AccountSid != "" && n.config.MessagingServiceSid != ""
}

func (n *Notifier) SendMessage(to, msg string) error {
	if n.testMode {
		n.logg.Infof("[test mode] sms to %v: %v", to, msg)
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(n.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := n.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("Notifier.SendMessage: %v", err)
	}

	if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return fmt.Errorf("Notifier.SendMessage: %v", *resp.ErrorMessage)
	}

	return nil
}
