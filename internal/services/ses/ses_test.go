package ses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/models"
)

type fakeSES struct {
	sent []*ses.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func upcoming(email, title string, deadline time.Time) models.UpcomingItem {
	return models.UpcomingItem{
		ChecklistItem: models.ChecklistItem{
			Title:    title,
			Category: models.CategoryDocuments,
			Deadline: &deadline,
		},
		UserEmail:      email,
		UniversityName: "MIT",
	}
}

func TestBuildDigests(t *testing.T) {
	today := time.Date(2025, time.March, 1, 15, 30, 0, 0, time.UTC)
	items := []models.UpcomingItem{
		upcoming("a@example.com", "Transcript", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
		upcoming("a@example.com", "Essay", time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)),
		upcoming("b@example.com", "Fee", time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)),
		{UserEmail: "c@example.com"},
	}

	digests := BuildDigests(items, today, 7, "https://app.example.com")

	require.Len(t, digests, 2)
	assert.Equal(t, "a@example.com", digests[0].UserEmail)
	require.Len(t, digests[0].Items, 2)
	assert.Equal(t, 0, digests[0].Items[0].DaysLeft)
	assert.Equal(t, 3, digests[0].Items[1].DaysLeft)
	assert.Equal(t, "b@example.com", digests[1].UserEmail)
	assert.Equal(t, 1, digests[1].Items[0].DaysLeft)
	assert.Equal(t, 7, digests[1].WindowDays)
}

func TestDigestSubject(t *testing.T) {
	single := DigestParams{WindowDays: 7, Items: []DigestItem{{Title: "Submit application!", DaysLeft: 1}}}
	assert.Equal(t, `Reminder: "Submit application!" is due tomorrow`, DigestSubject(single))

	multi := DigestParams{WindowDays: 7, Items: []DigestItem{{Title: "a"}, {Title: "b"}}}
	assert.Equal(t, "Reminder: 2 application tasks due in the next 7 days", DigestSubject(multi))
}

func TestSendDeadlineDigest(t *testing.T) {
	fake := &fakeSES{}
	svc := NewServiceWithClient(fake, "noreply@example.com")

	params := DigestParams{
		UserEmail:    "student@example.com",
		WindowDays:   7,
		DashboardURL: "https://app.example.com/dashboard",
		Items: []DigestItem{
			{Title: "Request transcript", UniversityName: "MIT <Cambridge>", Category: models.CategoryDocuments,
				Deadline: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), DaysLeft: 2},
		},
	}

	result, err := svc.SendDeadlineDigest(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", result.MessageID)

	require.Len(t, fake.sent, 1)
	in := fake.sent[0]
	assert.Equal(t, "noreply@example.com", aws.ToString(in.Source))
	assert.Equal(t, []string{"student@example.com"}, in.Destination.ToAddresses)

	html := aws.ToString(in.Message.Body.Html.Data)
	assert.Contains(t, html, "Request transcript")
	assert.Contains(t, html, "MIT &lt;Cambridge&gt;")
	assert.Contains(t, html, "Mar 3, 2025")
	assert.Contains(t, html, "https://app.example.com/dashboard")

	text := aws.ToString(in.Message.Body.Text.Data)
	assert.Contains(t, text, "1. Request transcript (MIT <Cambridge>)")
	assert.Contains(t, text, "Due Mar 3, 2025, in 2 days")
}

func TestSendEmail_Error(t *testing.T) {
	svc := NewServiceWithClient(&fakeSES{err: errors.New("throttled")}, "noreply@example.com")

	_, err := svc.SendEmail(context.Background(), EmailParams{To: "x@example.com", Subject: "s", TextBody: "b"})
	assert.Error(t, err)
}
