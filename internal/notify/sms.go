package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers text messages to a phone number
type Sender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, to, body string) error

func (f SenderFunc) SendSMS(ctx context.Context, to, body string) error {
	return f(ctx, to, body)
}

// TwilioSender sends SMS through the Twilio REST API
type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioSender creates a Twilio-backed sender. With no from number
// configured, messages are logged instead of sent.
func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, fromNumber: fromNumber}
}

// SendSMS implements Sender
func (t *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if t.fromNumber == "" {
		logrus.WithFields(logrus.Fields{"to": to, "body": body}).Info("SMS delivery disabled, message logged")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp.Sid != nil {
		logrus.WithFields(logrus.Fields{"to": to, "sid": *resp.Sid}).Debug("SMS sent")
	}
	return nil
}
