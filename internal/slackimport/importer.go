// Package slackimport maps Slack channel history onto question and reply
// writes. The operator picks threads in the dashboard; this package fetches
// candidates and persists the confirmed ones.
package slackimport

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/Growthfyi/squeak/internal/model"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/internal/sanitize"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const historyPageSize = 100

// conversationAPI is the slice of the Slack client the importer uses.
// *slack.Client satisfies it.
type conversationAPI interface {
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
}

// ThreadMessage is one message inside a candidate thread.
type ThreadMessage struct {
	Body      string `json:"body"`
	Timestamp string `json:"ts"`
}

// Thread is a Slack conversation offered for import. Subject and Slug are
// filled in by the operator before confirming.
type Thread struct {
	Timestamp  string          `json:"ts"`
	Subject    string          `json:"subject"`
	Slug       string          `json:"slug"`
	Body       string          `json:"body"`
	ReplyCount int             `json:"reply_count"`
	Replies    []ThreadMessage `json:"replies,omitempty"`
}

// Importer fetches channel history and writes confirmed threads through the
// question repository.
type Importer struct {
	client    conversationAPI
	questions *repository.QuestionRepo
}

// NewImporter creates an importer using the given bot token. An empty token
// yields an importer whose fetches fail; the handler guards against that.
func NewImporter(botToken string, questions *repository.QuestionRepo) *Importer {
	var client conversationAPI
	if botToken != "" {
		client = slack.New(botToken)
	}
	return &Importer{client: client, questions: questions}
}

// Configured reports whether a Slack token is present
func (i *Importer) Configured() bool {
	return i.client != nil
}

// ListThreads pages through the channel's history and returns each root
// message with its replies, bodies sanitized.
func (i *Importer) ListThreads(ctx context.Context, channelID string) ([]Thread, error) {
	var threads []Thread
	cursor := ""

	for {
		history, err := i.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     historyPageSize,
		})
		if err != nil {
			return nil, err
		}

		for _, message := range history.Messages {
			thread := Thread{
				Timestamp:  message.Timestamp,
				Body:       sanitize.Body(message.Text),
				ReplyCount: message.ReplyCount,
			}
			if message.ReplyCount > 0 {
				replies, err := i.listReplies(ctx, channelID, message.Timestamp)
				if err != nil {
					return nil, err
				}
				thread.Replies = replies
			}
			threads = append(threads, thread)
		}

		if !history.HasMore {
			break
		}
		cursor = history.ResponseMetaData.NextCursor
		if cursor == "" {
			break
		}
	}

	return threads, nil
}

func (i *Importer) listReplies(ctx context.Context, channelID, timestamp string) ([]ThreadMessage, error) {
	var replies []ThreadMessage
	cursor := ""

	for {
		messages, hasMore, nextCursor, err := i.client.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: channelID,
			Timestamp: timestamp,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, err
		}

		for _, message := range messages {
			// The parent message comes back as the first entry of the thread.
			if message.Timestamp == timestamp {
				continue
			}
			replies = append(replies, ThreadMessage{
				Body:      sanitize.Body(message.Text),
				Timestamp: message.Timestamp,
			})
		}

		if !hasMore || nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return replies, nil
}

// Import persists the confirmed threads for an organization and returns how
// many questions were created. A thread is published only when the operator
// supplied both a subject and a slug; threads without replies get their body
// as the opening reply.
func (i *Importer) Import(ctx context.Context, organizationID string, threads []Thread) (int, error) {
	log := logger.FromContext(ctx)
	imported := 0

	for _, thread := range threads {
		subject := thread.Subject
		if subject == "" {
			subject = "No subject"
		}

		timestamp := thread.Timestamp
		question := &model.Question{
			Subject:        subject,
			Slug:           []string{thread.Slug},
			Published:      thread.Subject != "" && thread.Slug != "",
			SlackTimestamp: &timestamp,
			OrganizationID: organizationID,
			CreatedAt:      timestampToTime(timestamp),
		}
		if err := i.questions.CreateQuestion(ctx, question); err != nil {
			return imported, err
		}

		if len(thread.Replies) > 0 {
			for _, reply := range thread.Replies {
				if err := i.questions.CreateReply(ctx, &model.Reply{
					MessageID:      question.ID,
					Body:           reply.Body,
					Published:      true,
					OrganizationID: organizationID,
					CreatedAt:      timestampToTime(reply.Timestamp),
				}); err != nil {
					return imported, err
				}
			}
		} else {
			if err := i.questions.CreateReply(ctx, &model.Reply{
				MessageID:      question.ID,
				Body:           thread.Body,
				Published:      true,
				OrganizationID: organizationID,
				CreatedAt:      timestampToTime(timestamp),
			}); err != nil {
				return imported, err
			}
		}

		imported++
		log.Debug("imported slack thread",
			zap.String("slack_timestamp", timestamp),
			zap.Uint("question_id", question.ID))
	}

	return imported, nil
}

// timestampToTime converts a Slack "seconds.fraction" timestamp to a time.
// Unparseable timestamps fall back to now.
func timestampToTime(timestamp string) time.Time {
	seconds, err := strconv.ParseFloat(timestamp, 64)
	if err != nil || seconds <= 0 {
		return time.Now()
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}
