// Package ses sends checklist deadline reminders via AWS SES.
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

	"admissions-engine/internal/models"
	"admissions-engine/internal/utils"
)

// SendAPI is the subset of the SES client the service uses.
type SendAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    SendAPI
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

// DigestParams contains data for one user's deadline reminder.
type DigestParams struct {
	UserEmail    string
	WindowDays   int
	Items        []DigestItem
	DashboardURL string
}

// DigestItem is one due task in a reminder.
type DigestItem struct {
	Title          string
	UniversityName string
	Category       models.ChecklistItemCategory
	Deadline       time.Time
	DaysLeft       int
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context, region, fromEmail string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewServiceWithClient(ses.NewFromConfig(cfg), fromEmail), nil
}

// NewServiceWithClient wraps an existing client.
func NewServiceWithClient(client SendAPI, fromEmail string) *Service {
	return &Service{client: client, fromEmail: fromEmail}
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

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}
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

	messageID := aws.ToString(result.MessageId)
	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendDeadlineDigest sends one reminder listing every task due soon.
func (s *Service) SendDeadlineDigest(ctx context.Context, params DigestParams) (*SendEmailResult, error) {
	htmlBody, err := renderDigestHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.UserEmail,
		Subject:  DigestSubject(params),
		HTMLBody: htmlBody,
		TextBody: renderDigestText(params),
	})
}

// DigestSubject names the count and the nearest deadline.
func DigestSubject(params DigestParams) string {
	if len(params.Items) == 1 {
		return fmt.Sprintf("Reminder: \"%s\" is due %s", params.Items[0].Title, dueIn(params.Items[0].DaysLeft))
	}
	return fmt.Sprintf("Reminder: %d application tasks due in the next %d days", len(params.Items), params.WindowDays)
}

// BuildDigests groups upcoming items per user. Items must already be ordered
// by user; the repository query does that. DaysLeft counts calendar days from today.
func BuildDigests(items []models.UpcomingItem, today time.Time, windowDays int, dashboardURL string) []DigestParams {
	var digests []DigestParams
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, item := range items {
		if item.Deadline == nil {
			continue
		}
		if len(digests) == 0 || digests[len(digests)-1].UserEmail != item.UserEmail {
			digests = append(digests, DigestParams{
				UserEmail:    item.UserEmail,
				WindowDays:   windowDays,
				DashboardURL: dashboardURL,
			})
		}
		due := time.Date(item.Deadline.Year(), item.Deadline.Month(), item.Deadline.Day(), 0, 0, 0, 0, time.UTC)
		digest := &digests[len(digests)-1]
		digest.Items = append(digest.Items, DigestItem{
			Title:          item.Title,
			UniversityName: item.UniversityName,
			Category:       item.Category,
			Deadline:       due,
			DaysLeft:       int(due.Sub(start).Hours() / 24),
		})
	}

	return digests
}

func dueIn(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

var digestTemplate = template.Must(template.New("deadline_digest").Funcs(template.FuncMap{
	"dueIn": dueIn,
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f3a60; color: white; padding: 24px; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        .task { background: white; border-radius: 8px; padding: 14px 18px; margin: 10px 0; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
        .task h3 { margin: 0; font-size: 16px; }
        .meta { color: #666; font-size: 13px; }
        .urgent { color: #c0392b; font-weight: bold; }
        .cta-button { display: inline-block; background: #1f3a60; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; margin-top: 16px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Upcoming application deadlines</h1>
        <p>{{len .Items}} task(s) due in the next {{.WindowDays}} days</p>
    </div>
    <div class="content">
        {{range .Items}}
        <div class="task">
            <h3>{{.Title}}</h3>
            <div class="meta">{{.UniversityName}} &middot; {{.Category}}</div>
            <div class="meta{{if le .DaysLeft 1}} urgent{{end}}">Due {{.Deadline.Format "Jan 2, 2006"}} ({{dueIn .DaysLeft}})</div>
        </div>
        {{end}}
        {{if .DashboardURL}}
        <a href="{{.DashboardURL}}" class="cta-button">Open your checklists</a>
        {{end}}
    </div>
</body>
</html>`))

func renderDigestHTML(params DigestParams) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderDigestText(params DigestParams) string {
	var b strings.Builder

	b.WriteString("Hi,\n\n")
	fmt.Fprintf(&b, "You have %d application task(s) due in the next %d days:\n\n", len(params.Items), params.WindowDays)
	for i, item := range params.Items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Title, item.UniversityName)
		fmt.Fprintf(&b, "   Due %s, %s\n", item.Deadline.Format("Jan 2, 2006"), dueIn(item.DaysLeft))
	}
	if params.DashboardURL != "" {
		fmt.Fprintf(&b, "\nOpen your checklists: %s\n", params.DashboardURL)
	}
	b.WriteString("\nGood luck with your applications!\n")

	return b.String()
}
