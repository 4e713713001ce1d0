package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"

	"impactdash/adapters/filestore"
	"impactdash/adapters/llm"
	"impactdash/adapters/resend"
	"impactdash/adapters/sqlstore"
	"impactdash/ai"
	"impactdash/app"
	"impactdash/domain/core"
	"impactdash/internal"
	"impactdash/internal/auth"
	"impactdash/internal/chatcontext"
	"impactdash/internal/config"
	"impactdash/internal/quota"
	"impactdash/internal/usage"
	"impactdash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Clock  core.Clock

	// Infrastructure
	DB      *sqlx.DB
	Store   *filestore.Store
	Data    ports.DataSource
	watcher *filestore.Cached

	// Repositories
	QuotaStore ports.QuotaStore
	UsageRepo  ports.UsageRepository

	// External services
	Provider ports.ChatProvider
	Mailer   ports.Mailer
	Prompts  *ai.PromptManager

	Limiter *quota.Limiter
	Usage   *usage.Service
	Auth    *auth.Authenticator

	// Application services
	Chat       *app.ChatService
	News       *app.NewsService
	Newsletter *app.NewsletterService
	Dashboard  *app.DashboardService
}

// Options tweak how much of the container is built
type Options struct {
	// Watch starts the data directory watcher; ignored unless DATA_WATCH is set
	Watch bool
	// Clock defaults to the system clock
	Clock core.Clock
}

// New creates the dependency injection container
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}

	c := &Container{Config: cfg, Logger: logger, Clock: opts.Clock}

	if err := c.initData(ctx, opts.Watch && cfg.Data.Watch); err != nil {
		return nil, err
	}
	if err := c.initRepositories(ctx); err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}
	c.initExternal()
	c.initServices()

	logger.Info("Container initialized (provider=%s, database=%t, watch=%t)",
		c.Provider.Name(), c.DB != nil, c.watcher != nil)
	return c, nil
}

// initData sets up the JSON file store, optionally behind the watcher cache
func (c *Container) initData(ctx context.Context, watch bool) error {
	c.Store = filestore.New(c.Config.Data.Dir, c.Clock, c.Logger)
	c.Data = c.Store
	if !watch {
		return nil
	}

	cached, err := filestore.NewCached(c.Store, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}
	cached.Start(ctx)
	c.watcher = cached
	c.Data = cached
	return nil
}

// initRepositories uses the database when DATABASE_URL is set, in-memory
// stores otherwise
func (c *Container) initRepositories(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.QuotaStore = sqlstore.NewMemoryQuotaStore()
		c.UsageRepo = sqlstore.NopUsageRepository{}
		return nil
	}

	db, err := sqlstore.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db
	c.QuotaStore = sqlstore.NewQuotaRepository(db)
	c.UsageRepo = sqlstore.NewUsageRepository(db)
	return nil
}

// initExternal creates the LLM provider and the mailer. Neither fails the
// start-up: a misconfigured provider answers every chat with its error and a
// missing mailer key is reported per newsletter request.
func (c *Container) initExternal() {
	llmCfg := c.Config.LLM
	provider, err := llm.NewProvider(llm.Config{
		Provider:      llmCfg.Provider,
		OpenAIKey:     llmCfg.OpenAIKey,
		OpenAIModel:   llmCfg.OpenAIModel,
		OpenAIBaseURL: llmCfg.OpenAIBaseURL,
		GeminiKey:     llmCfg.GeminiKey,
		GeminiModel:   llmCfg.GeminiModel,
		GeminiBaseURL: llmCfg.GeminiBaseURL,
		Timeout:       llmCfg.Timeout,
	})
	if err != nil {
		c.Logger.Error("LLM provider unusable: %v", err)
		provider = llm.FailingProvider{Err: err}
	}
	c.Provider = provider
	c.Prompts = ai.NewPromptManager(llmCfg.PromptsDir, c.Logger)

	if c.Config.Newsletter.APIKey != "" {
		c.Mailer = resend.New(c.Config.Newsletter.APIKey)
	} else {
		c.Logger.Warn("RESEND_API_KEY not set, newsletter requests will fail")
	}
}

func (c *Container) initServices() {
	chatCfg := c.Config.Chat

	c.Limiter = quota.NewLimiter(c.QuotaStore, c.Clock, chatCfg.DailyLimit)
	c.Usage = usage.NewService(c.UsageRepo, c.Clock, c.Logger)
	c.Auth = auth.New(c.Config.Auth, c.Clock, c.Logger)

	c.Chat = app.NewChatService(c.Data, c.Provider, c.Prompts, app.ChatOptions{
		Formatter:    chatcontext.NewFormatter(chatCfg.DescriptionBudget, chatCfg.NewsLimit),
		Limiter:      c.Limiter,
		Usage:        c.Usage,
		Clock:        c.Clock,
		Logger:       c.Logger,
		HistoryLimit: chatCfg.HistoryLimit,
	})
	c.News = app.NewNewsService(c.Data, c.Clock, c.Logger)
	c.Newsletter = app.NewNewsletterService(c.Mailer, c.Config.Newsletter.AudienceID, c.Logger)
	c.Dashboard = app.NewDashboardService(c.Data)
}

// Shutdown stops the watcher, flushes pending usage records and closes the database
func (c *Container) Shutdown(ctx context.Context) error {
	var err error
	if c.watcher != nil {
		err = multierr.Append(err, c.watcher.Close())
	}
	if c.Usage != nil {
		c.Usage.Wait()
	}
	if c.DB != nil {
		err = multierr.Append(err, c.DB.Close())
	}
	return err
}
