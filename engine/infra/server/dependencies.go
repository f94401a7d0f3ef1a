package server

import (
	"context"
	"fmt"
	"time"

	assistadapter "github.com/substratehq/substrate/engine/assist/adapter"
	assistuc "github.com/substratehq/substrate/engine/assist/uc"
	authpg "github.com/substratehq/substrate/engine/auth/infra/postgres"
	authredis "github.com/substratehq/substrate/engine/auth/infra/redis"
	"github.com/substratehq/substrate/engine/auth/ratelimit"
	authuc "github.com/substratehq/substrate/engine/auth/uc"
	billingpg "github.com/substratehq/substrate/engine/billing/infra/postgres"
	"github.com/substratehq/substrate/engine/billing/stripeapi"
	billinguc "github.com/substratehq/substrate/engine/billing/uc"
	"github.com/substratehq/substrate/engine/billing/webhook"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/infra/cache"
	"github.com/substratehq/substrate/engine/infra/postgres"
	"github.com/substratehq/substrate/engine/mailer"
	"github.com/substratehq/substrate/engine/mailer/resendapi"
	projectpg "github.com/substratehq/substrate/engine/project/infra/postgres"
	projectuc "github.com/substratehq/substrate/engine/project/uc"
	"github.com/substratehq/substrate/pkg/config"
	"github.com/substratehq/substrate/pkg/logger"
)

// apiKeyCacheTTL bounds how long a revoked key stays usable via the cache
const apiKeyCacheTTL = 5 * time.Minute

// dependencies holds every wired component the HTTP layer serves
type dependencies struct {
	store   *postgres.Store
	redis   *cache.Redis
	limiter *ratelimit.Service

	authFactory    *authuc.Factory
	projectFactory *projectuc.Factory
	billingFactory *billinguc.Factory
	assistFactory  *assistuc.Factory
	verifier       *webhook.Verifier
}

// buildDependencies assembles storage, providers, and use case factories.
// Redis is optional: when unreachable the service runs without the API key
// cache, at the cost of a bcrypt check per request.
func buildDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	log := logger.FromContext(ctx)

	store, err := postgres.NewStore(ctx, &postgres.Config{
		ConnString: cfg.Database.ConnString,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password.Value(),
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing postgres: %w", err)
	}

	deps := &dependencies{store: store}

	authRepo := authpg.NewRepository(store.Pool())
	redisClient, err := cache.NewRedis(ctx, &cache.Config{
		URL:      cfg.Redis.URL,
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password.Value(),
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, running without API key cache", "error", err)
	} else {
		deps.redis = redisClient
		authRepo = authredis.NewCachedRepository(authRepo, redisClient.Client(), apiKeyCacheTTL)
	}

	mailerSvc := buildMailer(cfg)
	notifier := &lifecycleNotifier{mailer: mailerSvc, users: authRepo}

	deps.limiter = ratelimit.NewService(ratelimit.DefaultConfig())
	deps.authFactory = authuc.NewFactory(authRepo)
	if notifier.enabled() {
		deps.authFactory.WithNotifier(notifier)
	}

	deps.projectFactory = projectuc.NewFactory(projectpg.NewRepository(store.Pool()))

	billingClient := stripeapi.NewClient(cfg.Billing.APIBaseURL, cfg.Billing.APIKey.Value())
	deps.billingFactory = billinguc.NewFactory(
		billingpg.NewRepository(store.Pool()),
		stripeapi.NewAdapter(billingClient),
		billinguc.CheckoutURLs{
			SuccessURL: cfg.Billing.SuccessURL,
			CancelURL:  cfg.Billing.CancelURL,
		},
	)
	if notifier.enabled() {
		deps.billingFactory.WithNotifier(notifier)
	}
	deps.verifier, err = webhook.NewVerifier([]byte(cfg.Billing.WebhookSecret.Value()), 0)
	if err != nil {
		log.Warn("Billing webhook secret not configured, webhook endpoint disabled")
		deps.verifier = nil
	}

	assistClient, err := assistadapter.NewOpenAIAdapter(assistadapter.Config{
		APIKey: cfg.Assist.APIKey.Value(),
		Model:  cfg.Assist.Model,
	})
	if err != nil {
		deps.close(ctx)
		return nil, fmt.Errorf("initializing completion client: %w", err)
	}
	deps.assistFactory = assistuc.NewFactory(assistClient, assistuc.Defaults{
		MaxTokens:   cfg.Assist.MaxTokens,
		Temperature: cfg.Assist.Temperature,
	})

	return deps, nil
}

// buildMailer returns nil when no provider key is configured
func buildMailer(cfg *config.Config) *mailer.Service {
	if cfg.Mailer.APIKey.Value() == "" {
		return nil
	}
	client := resendapi.NewClient(cfg.Mailer.APIBaseURL, cfg.Mailer.APIKey.Value())
	return mailer.NewService(client, cfg.Mailer.FromEmail)
}

func (d *dependencies) close(ctx context.Context) {
	log := logger.FromContext(ctx)
	if d.limiter != nil {
		d.limiter.Stop()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Error("Closing redis client", "error", err)
		}
	}
	if d.store != nil {
		if err := d.store.Close(ctx); err != nil {
			log.Error("Closing postgres store", "error", err)
		}
	}
}

// lifecycleNotifier bridges domain lifecycle events to the mailer. A nil
// mailer disables it.
type lifecycleNotifier struct {
	mailer *mailer.Service
	users  authuc.Repository
}

func (n *lifecycleNotifier) enabled() bool { return n.mailer != nil }

func (n *lifecycleNotifier) SendWelcome(ctx context.Context, email string) error {
	return n.mailer.SendWelcome(ctx, email)
}

func (n *lifecycleNotifier) SubscriptionActivated(ctx context.Context, userID core.ID, plan string) error {
	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolving subscriber: %w", err)
	}
	return n.mailer.SendSubscriptionConfirmation(ctx, user.Email, plan)
}
