package notifications

import (
	"autoapprove/internal/subscriptions"
	"bytes"
	"context"
	_ "embed"
	"text/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

const (
	DefaultSubject = "Subscription Request is auto-approved by Lambda"

	// MaxSubjectLength is the longest subject SNS accepts for email endpoints.
	MaxSubjectLength = 100
)

//go:embed templates/approval-notification.txt
var approvalTemplate string

// DefaultTemplate parses the embedded approval notification template.
func DefaultTemplate() (*template.Template, error) {
	return template.New("approval-notification").Parse(approvalTemplate)
}

// SNSNotification represents an abstraction for a notification to be published via AWS SNS.
type SNSNotification interface {
	Message() (string, error)
	Subject() string
	TopicArn() string
}

// SNSPublisher is the subset of the SNS client used to publish notifications.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ApprovalNotification struct {
	Account       string
	AssetName     string
	Date          string
	Domain        string
	Justification string
	RequestID     string
	Requester     string
	Stack         string
	Title         string
	Template      *template.Template
	Topic         string
}

func (n ApprovalNotification) Message() (string, error) {
	var buf bytes.Buffer
	if err := n.Template.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n ApprovalNotification) Subject() string {
	if n.Title == "" {
		return DefaultSubject
	}
	if len(n.Title) > MaxSubjectLength {
		return n.Title[:MaxSubjectLength]
	}
	return n.Title
}

func (n ApprovalNotification) TopicArn() string {
	return n.Topic
}

// SendNotification renders and publishes a notification, returning the SNS message ID.
func SendNotification(ctx context.Context, client SNSPublisher, notification SNSNotification) (string, error) {
	message, err := notification.Message()
	if err != nil {
		return "", ErrorRenderingNotification(notification.Subject(), err)
	}

	result, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(notification.TopicArn()),
		Subject:  aws.String(notification.Subject()),
		Message:  aws.String(message),
	})
	if err != nil {
		return "", ErrorPublishingNotification(notification.TopicArn(), err)
	}

	return aws.ToString(result.MessageId), nil
}

// Notifier publishes a confirmation for each approval to a fixed topic.
type Notifier struct {
	client   SNSPublisher
	topicArn string
	account  string
	stack    string
	tmpl     *template.Template
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewNotifier(client SNSPublisher, topicArn, account, stack string, tmpl *template.Template, timeout time.Duration, logger *zap.Logger) *Notifier {
	return &Notifier{
		client:   client,
		topicArn: topicArn,
		account:  account,
		stack:    stack,
		tmpl:     tmpl,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Notify publishes one message for an approved request. It makes a single attempt; the
// caller decides what a failure means.
func (n *Notifier) Notify(ctx context.Context, decision subscriptions.Decision, req subscriptions.Request) error {
	notification := ApprovalNotification{
		Account:       n.account,
		AssetName:     req.AssetName(),
		Date:          n.now().UTC().Format(time.RFC3339),
		Domain:        req.DomainID,
		Justification: decision.Justification,
		RequestID:     decision.RequestID,
		Requester:     req.RequesterName(),
		Stack:         n.stack,
		Title:         DefaultSubject,
		Template:      n.tmpl,
		Topic:         n.topicArn,
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	messageID, err := SendNotification(ctx, n.client, notification)
	if err != nil {
		return err
	}

	n.logger.Info("Notification sent successfully",
		zap.String("request_id", decision.RequestID),
		zap.String("message_id", messageID),
	)
	return nil
}
