package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMS sends text messages through Twilio
type SMS struct {
	api  messageCreator
	from string
}

// NewSMS creates a Twilio notifier sending from the given phone number
func NewSMS(accountSID, authToken, from string) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMS{api: client.Api, from: from}
}

func (s *SMS) Send(ctx context.Context, to, message string) error {
	if to == "" {
		return errors.New("sms recipient is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	return nil
}
