// Package ses sends decision notification emails via AWS SES.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// DecisionNotificationParams contains the data for a decision email sent
// to the account officer handling the application.
type DecisionNotificationParams struct {
	OfficerEmail string
	OfficerName  string
	ClientName   string
	ClientNumber string
	SessionID    string
	Outcome      models.Outcome
	Reasons      []string
	DecidedAt    time.Time
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service sending from the given address.
func NewService(ctx context.Context, senderEmail string) (*Service, error) {
	if senderEmail == "" {
		return nil, fmt.Errorf("no SES sender email configured")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: senderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	// Add HTML body if provided
	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add text body if provided
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add reply-to
	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendDecisionNotification emails the final decision to the account
// officer.
func (s *Service) SendDecisionNotification(ctx context.Context, params DecisionNotificationParams) (*SendEmailResult, error) {
	htmlBody, err := renderDecisionHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	client := params.ClientName
	if client == "" {
		client = params.ClientNumber
	}
	if client == "" {
		client = "application " + params.SessionID
	}

	subject := fmt.Sprintf("Credit decision for %s: %s", client, params.Outcome.Label())

	return s.SendEmail(ctx, EmailParams{
		To:       params.OfficerEmail,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: renderDecisionText(params, client),
	})
}

// renderDecisionText renders the plain-text body.
func renderDecisionText(params DecisionNotificationParams, client string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Decision for %s: %s\n", client, params.Outcome.Label())
	fmt.Fprintf(&b, "Decided at: %s\n", params.DecidedAt.UTC().Format(time.RFC3339))

	if len(params.Reasons) > 0 {
		b.WriteString("Reasons:\n")
		for _, reason := range params.Reasons {
			fmt.Fprintf(&b, "  - %s\n", reason)
		}
	}

	return b.String()
}

// renderDecisionHTML renders the HTML body.
func renderDecisionHTML(params DecisionNotificationParams) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .banner { color: white; padding: 20px; border-radius: 8px 8px 0 0; text-align: center; background: {{.Color}}; }
        .banner h1 { margin: 0; font-size: 22px; }
        .content { background: #f9f9f9; padding: 20px; border-radius: 0 0 8px 8px; }
        .content ul { margin: 10px 0; padding-left: 20px; }
        .meta { color: #666; font-size: 13px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="banner">
        <h1>{{.OutcomeLabel}}</h1>
    </div>
    <div class="content">
        <p>Hello {{.Officer}},</p>
        <p>The application for <strong>{{.Client}}</strong> has been decided: <strong>{{.OutcomeLabel}}</strong>.</p>
        {{if .Reasons}}
        <p>Reasons:</p>
        <ul>
            {{range .Reasons}}<li>{{.}}</li>{{end}}
        </ul>
        {{end}}
        <p class="meta">Session {{.SessionID}} · decided {{.DecidedAt}}</p>
    </div>
</body>
</html>`

	t, err := template.New("decision").Parse(tmpl)
	if err != nil {
		return "", err
	}

	officer := params.OfficerName
	if officer == "" {
		officer = "there"
	}

	client := params.ClientName
	if client == "" {
		client = params.ClientNumber
	}

	color := "#28a745"
	switch params.Outcome {
	case models.OutcomeConditionalRisk:
		color = "#fd7e14"
	case models.OutcomeRefused:
		color = "#dc3545"
	}

	data := struct {
		Officer      string
		Client       string
		OutcomeLabel string
		Color        template.CSS
		Reasons      []string
		SessionID    string
		DecidedAt    string
	}{
		Officer:      officer,
		Client:       client,
		OutcomeLabel: params.Outcome.Label(),
		Color:        template.CSS(color),
		Reasons:      params.Reasons,
		SessionID:    params.SessionID,
		DecidedAt:    params.DecidedAt.UTC().Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
