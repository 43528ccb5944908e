package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"admissions-engine/internal/metrics"
	"admissions-engine/internal/services/ses"
	"admissions-engine/internal/utils"
)

// DeadlineReminderHandler emails each user a digest of their open checklist
// items due within the reminder window. It runs on a schedule.
type DeadlineReminderHandler struct {
	items        UpcomingItemStore
	sender       DigestSender
	windowDays   int
	dashboardURL string
	now          func() time.Time
}

// NewDeadlineReminderHandler creates a new reminder handler.
func NewDeadlineReminderHandler(items UpcomingItemStore, sender DigestSender, windowDays int, dashboardURL string) *DeadlineReminderHandler {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &DeadlineReminderHandler{
		items:        items,
		sender:       sender,
		windowDays:   windowDays,
		dashboardURL: dashboardURL,
		now:          time.Now,
	}
}

// ReminderResult summarizes one reminder run.
type ReminderResult struct {
	Message    string   `json:"message"`
	WindowFrom string   `json:"window_from"`
	WindowTo   string   `json:"window_to"`
	Items      int      `json:"items"`
	Sent       int      `json:"sent"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Handle processes a scheduled event. A failed send does not stop the others.
func (h *DeadlineReminderHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (ReminderResult, error) {
	logger := utils.GetLogger()

	y, m, d := h.now().UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, h.windowDays)

	result := ReminderResult{
		WindowFrom: from.Format("2006-01-02"),
		WindowTo:   to.Format("2006-01-02"),
	}

	items, err := h.items.UpcomingItems(ctx, from, to)
	if err != nil {
		logger.Error("Failed to load upcoming items", zap.Error(err))
		return result, fmt.Errorf("failed to load upcoming items: %w", err)
	}
	result.Items = len(items)

	digests := ses.BuildDigests(items, from, h.windowDays, h.dashboardURL)
	for _, digest := range digests {
		sent, err := h.sender.SendDeadlineDigest(ctx, digest)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", digest.UserEmail, err))
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			logger.Warn("Failed to send reminder",
				zap.String("email", digest.UserEmail),
				zap.Error(err))
			continue
		}

		result.Sent++
		metrics.RemindersSent.WithLabelValues("sent").Inc()
		logger.Info("Sent reminder",
			zap.String("email", digest.UserEmail),
			zap.Int("items", len(digest.Items)),
			zap.String("messageID", sent.MessageID))
	}

	result.Errors = limitErrors(result.Errors)
	result.Message = fmt.Sprintf("Sent %d of %d reminder digests", result.Sent, len(digests))

	logger.Info("Deadline reminder run complete",
		zap.String("trigger", event.DetailType),
		zap.Int("items", result.Items),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))

	return result, nil
}
