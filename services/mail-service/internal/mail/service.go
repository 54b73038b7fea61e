package mail

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stoik/mailhub/internal/models"
	"github.com/stoik/mailhub/services/mail-service/internal/classifier"
	"github.com/stoik/mailhub/services/mail-service/internal/projector"
	"github.com/stoik/mailhub/services/mail-service/internal/provider"
	"golang.org/x/sync/errgroup"
)

// ListOptions controls a listing.
type ListOptions struct {
	// IncludeReplyCounts fetches each message's thread and counts the
	// recruiter-like messages in it.
	IncludeReplyCounts bool
	// Limit caps the number of messages; zero means provider.DefaultPageSize.
	Limit int64
}

// Service lists and reads mail for one linked credential at a time.
type Service struct {
	provider   provider.Provider
	classifier *classifier.Classifier
	logger     zerolog.Logger
}

func NewService(p provider.Provider, c *classifier.Classifier, logger zerolog.Logger) *Service {
	if c == nil {
		c = classifier.Default()
	}
	return &Service{
		provider:   p,
		classifier: c,
		logger:     logger.With().Str("component", "mail").Logger(),
	}
}

// ListSummaries returns the newest messages, each annotated with the
// recruiter flag. A failed thread lookup only zeroes that message's reply
// count; it never fails the listing.
func (s *Service) ListSummaries(ctx context.Context, cred models.Credential, opts ListOptions) ([]models.MessageSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = provider.DefaultPageSize
	}

	messages, err := s.provider.ListMessages(ctx, cred, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MessageSummary, len(messages))
	for i, msg := range messages {
		summaries[i] = projector.Summary(msg)
		summaries[i].IsRecruiter = s.classifier.Matches(summaries[i])
	}

	if opts.IncludeReplyCounts {
		s.attachReplyCounts(ctx, cred, summaries)
	}
	return summaries, nil
}

func (s *Service) attachReplyCounts(ctx context.Context, cred models.Credential, summaries []models.MessageSummary) {
	var g errgroup.Group
	for i := range summaries {
		i := i
		threadID := summaries[i].ThreadID
		if threadID == "" {
			continue
		}
		g.Go(func() error {
			count := s.replyCount(ctx, cred, threadID)
			summaries[i].ReplyCountRecruiter = &count
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) replyCount(ctx context.Context, cred models.Credential, threadID string) int {
	thread, err := s.provider.GetThread(ctx, cred, threadID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("thread_id", threadID).
			Str("kind", provider.KindOf(err).String()).
			Msg("Reply count degraded to zero")
		return 0
	}

	members := make([]models.MessageSummary, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		members = append(members, projector.Summary(msg))
	}
	return s.classifier.CountInThread(members)
}

// Message fetches one message in full and decodes its body.
func (s *Service) Message(ctx context.Context, cred models.Credential, id string) (models.MessageDetail, error) {
	msg, err := s.provider.GetMessage(ctx, cred, id, provider.FormatFull)
	if err != nil {
		return models.MessageDetail{}, err
	}
	detail := projector.Detail(msg)
	detail.IsRecruiter = s.classifier.Matches(detail.MessageSummary)
	return detail, nil
}
