// Package notify hands mail jobs to the mailer queue. Rendering and delivery
// happen in the mailer service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/testimonial-hub/backend/internal/awsclient"
)

// Mail templates
const (
	TemplateRecordingInvite     = "recording_invite"
	TemplateTestimonialReceived = "testimonial_received"
)

// MailerMessage is the job format consumed by the mailer.
type MailerMessage struct {
	Template   string            `json:"template"`
	To         string            `json:"to,omitempty"`
	BusinessID string            `json:"business_id"`
	Data       map[string]string `json:"data"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      awsclient.SQSAPI
	QueueURL string
}

func NewPublisher(sqsClient awsclient.SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

func (p *Publisher) Send(ctx context.Context, msg MailerMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mailer message: %w", err)
	}
	bodyStr := string(body)

	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &bodyStr,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"template": {
				DataType:    awsString("String"),
				StringValue: awsString(msg.Template),
			},
		},
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
