package app

import (
	"context"
	"strings"
	"time"

	"impactdash/ai"
	"impactdash/domain/core"
	"impactdash/internal"
	"impactdash/internal/chatcontext"
	"impactdash/internal/errors"
	"impactdash/internal/quota"
	"impactdash/internal/usage"
	"impactdash/ports"
)

// DefaultHistoryLimit caps how many earlier turns are sent to the provider
const DefaultHistoryLimit = 20

// HistoryEntry is a prior turn as sent by the client
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one user question with its conversation
type ChatRequest struct {
	Message  string
	History  []HistoryEntry
	ClientID core.ClientID
}

// ChatReply is the provider's answer
type ChatReply struct {
	Message   string        `json:"message"`
	HTML      string        `json:"html"`
	Timestamp string        `json:"timestamp"`
	Quota     *quota.Status `json:"quota,omitempty"`
}

// ChatService answers questions about the dashboard data
type ChatService struct {
	data         ports.DataSource
	provider     ports.ChatProvider
	prompts      *ai.PromptManager
	formatter    chatcontext.Formatter
	limiter      *quota.Limiter
	usage        *usage.Service
	clock        core.Clock
	logger       *internal.Logger
	historyLimit int
}

// ChatOptions holds the optional collaborators of a ChatService
type ChatOptions struct {
	Formatter    chatcontext.Formatter
	Limiter      *quota.Limiter
	Usage        *usage.Service
	Clock        core.Clock
	Logger       *internal.Logger
	HistoryLimit int
}

// NewChatService creates a chat service. A nil limiter disables the daily quota.
func NewChatService(data ports.DataSource, provider ports.ChatProvider, prompts *ai.PromptManager, opts ChatOptions) *ChatService {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = internal.NewNopLogger()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if prompts == nil {
		prompts = ai.NewPromptManager("", opts.Logger)
	}
	return &ChatService{
		data:         data,
		provider:     provider,
		prompts:      prompts,
		formatter:    chatcontext.NewFormatter(opts.Formatter.DescriptionBudget, opts.Formatter.NewsLimit),
		limiter:      opts.Limiter,
		usage:        opts.Usage,
		clock:        opts.Clock,
		logger:       opts.Logger,
		historyLimit: opts.HistoryLimit,
	}
}

// Reply validates the request, builds the data context and asks the provider
func (s *ChatService) Reply(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.ValidationError("Message is required")
	}

	var reservation *quota.Reservation
	if s.limiter != nil && !req.ClientID.IsEmpty() {
		r, err := s.limiter.Reserve(ctx, req.ClientID)
		if err != nil {
			return nil, err
		}
		reservation = r
	}

	completion, err := s.complete(ctx, req)
	if err != nil {
		if reservation != nil {
			if _, relErr := reservation.Release(context.WithoutCancel(ctx)); relErr != nil {
				s.logger.Warn("[ChatService] quota slot not released for %s: %v", req.ClientID, relErr)
			}
		}
		return nil, err
	}

	reply := &ChatReply{
		Message:   completion.Content,
		HTML:      RenderMarkdown(completion.Content),
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339Nano),
	}
	if reservation != nil {
		reply.Quota = &reservation.Status
	}
	if s.usage != nil {
		s.usage.RecordUsage(req.ClientID, usage.OpChat, completion.Usage)
	}
	return reply, nil
}

func (s *ChatService) complete(ctx context.Context, req ChatRequest) (*ports.ChatCompletion, error) {
	systemPrompt, err := s.prompts.SystemPrompt(s.BuildContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "failed to render system prompt")
	}

	completion, err := s.provider.Complete(ctx, systemPrompt, s.Conversation(req.History, req.Message))
	if err != nil {
		s.logger.Error("[ChatService] %s provider failed: %v", s.provider.Name(), err)
		return nil, err
	}
	return completion, nil
}

// BuildContext formats the current data, or the no-data sentence when the
// startup list cannot be read.
func (s *ChatService) BuildContext(ctx context.Context) string {
	snap, err := s.data.Load(ctx)
	if err != nil {
		s.logger.Error("[ChatService] error reading data files: %v", err)
		return chatcontext.NoDataContext
	}
	s.logger.Info("[ChatService] context: %d startups, %d insights, %d news", len(snap.Startups), len(snap.Insights), len(snap.News.News))
	return s.formatter.Build(snap.Startups, snap.Insights, snap.News.News)
}

// Conversation keeps well-formed history entries, trims them to the
// history limit and appends the current message.
func (s *ChatService) Conversation(history []HistoryEntry, message string) []ports.ChatMessage {
	kept := make([]ports.ChatMessage, 0, len(history)+1)
	for _, h := range history {
		role := ports.Role(h.Role)
		if h.Content == "" || (role != ports.RoleUser && role != ports.RoleAssistant) {
			continue
		}
		kept = append(kept, ports.ChatMessage{Role: role, Content: h.Content})
	}
	if len(kept) > s.historyLimit {
		kept = kept[len(kept)-s.historyLimit:]
	}
	return append(kept, ports.ChatMessage{Role: ports.RoleUser, Content: message})
}

// QuotaStatus reports the client's remaining chat replies for today
func (s *ChatService) QuotaStatus(ctx context.Context, client core.ClientID) (*quota.Status, error) {
	if s.limiter == nil {
		return nil, errors.NotFound("chat quota")
	}
	st, err := s.limiter.Status(ctx, client)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
