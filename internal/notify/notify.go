// Package notify fans a new-question event out to the organization's Slack
// channel. Delivery is best-effort, at-most-once: dispatch runs after the HTTP
// response is written and its failure is logged, never surfaced to the caller.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/Growthfyi/squeak/prometheus"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const dispatchTimeout = 10 * time.Second

// QuestionAlert describes a newly created question.
type QuestionAlert struct {
	OrganizationID string
	QuestionID     uint
	Subject        string
	Body           string
	Slug           string
	ProfileID      string
}

// Notifier dispatches question alerts.
type Notifier interface {
	NotifyNewQuestion(alert QuestionAlert)
}

// chatPoster is the slice of the Slack client the dispatcher uses.
// *slack.Client satisfies it.
type chatPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts question alerts to the channel configured for the
// organization. Each dispatch runs on its own goroutine; Wait drains them on
// shutdown.
type SlackNotifier struct {
	client  chatPoster
	configs *repository.ConfigRepo
	wg      sync.WaitGroup
}

// NewSlackNotifier creates a notifier using the given bot token. An empty
// token yields a notifier that logs and skips every dispatch.
func NewSlackNotifier(botToken string, configs *repository.ConfigRepo) *SlackNotifier {
	var client chatPoster
	if botToken != "" {
		client = slack.New(botToken)
	}
	return &SlackNotifier{client: client, configs: configs}
}

// NotifyNewQuestion submits the alert for background delivery and returns
// immediately. The caller's control flow is never affected by the outcome.
func (n *SlackNotifier) NotifyNewQuestion(alert QuestionAlert) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.GetLogger().Error("question alert dispatch panicked", zap.Any("panic", r))
			}
		}()
		n.dispatch(alert)
	}()
}

// Wait blocks until all in-flight dispatches finish
func (n *SlackNotifier) Wait() {
	n.wg.Wait()
}

func (n *SlackNotifier) dispatch(alert QuestionAlert) {
	log := logger.GetLogger().With(
		zap.String("organization_id", alert.OrganizationID),
		zap.Uint("question_id", alert.QuestionID),
	)

	if n.client == nil {
		log.Debug("slack not configured, skipping question alert")
		prometheus.RecordNotification("skipped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	config, err := n.configs.Get(ctx, alert.OrganizationID)
	if err != nil {
		log.Error("failed to load config for question alert", zap.Error(err))
		prometheus.RecordNotification("error")
		return
	}
	if config.SlackQuestionsChannel == "" {
		log.Debug("no questions channel configured, skipping question alert")
		prometheus.RecordNotification("skipped")
		return
	}

	text := fmt.Sprintf("*%s*\n%s", alert.Subject, alert.Body)
	if alert.Slug != "" {
		text = fmt.Sprintf("%s\n_%s_", text, alert.Slug)
	}

	_, _, err = n.client.PostMessageContext(ctx, config.SlackQuestionsChannel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		log.Error("failed to post question alert", zap.Error(err))
		prometheus.RecordNotification("error")
		return
	}

	prometheus.RecordNotification("ok")
	log.Info("question alert dispatched", zap.String("channel", config.SlackQuestionsChannel))
}
