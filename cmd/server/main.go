package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/loopmeet/api/internal/app"
	"github.com/loopmeet/api/internal/config"
	infrahttp "github.com/loopmeet/api/internal/infra/http"
	"github.com/loopmeet/api/internal/infra/http/handler"
	"github.com/loopmeet/api/internal/infra/postgres"
	"github.com/loopmeet/api/internal/infra/redis"
	"github.com/loopmeet/api/pkg/logger"
	"github.com/loopmeet/api/pkg/migrations"
	"github.com/loopmeet/api/pkg/password"
	"github.com/loopmeet/api/pkg/supabase"
	"github.com/loopmeet/api/pkg/validator"
)

func main() {
	root := &cobra.Command{
		Use:           "loopmeet-api",
		Short:         "LoopMeet group coordination API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeWithLog(db.Close, "database", log)
	log.Info("database connected")

	redisClient, err := redis.New(&cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer closeWithLog(redisClient.Close, "redis", log)
	log.Info("redis connected")

	tokens, err := supabase.NewTokenValidator(cfg.Supabase.JWTSecret, cfg.Supabase.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token validator: %w", err)
	}

	var identityClient app.IdentityClient
	passwordConfigured := cfg.Supabase.Configured()
	if passwordConfigured {
		client, err := supabase.NewClient(supabase.Config{
			URL:     cfg.Supabase.URL,
			AnonKey: cfg.Supabase.AnonKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize supabase client: %w", err)
		}
		identityClient = client
		log.Info("identity provider configured")
	} else {
		log.Warn("identity provider not configured, password changes disabled")
	}

	// Repositories.
	users := postgres.NewUserRepository(db)
	identities := postgres.NewAuthIdentityRepository(db)
	groups := postgres.NewGroupRepository(db)
	memberships := postgres.NewMembershipRepository(db)
	invitations := postgres.NewInvitationRepository(db)

	// Read-side caches.
	groupsCache := redis.MustNewCache[app.GroupsView](redisClient, app.GroupsCachePrefix, cfg.Cache.TTL)
	detailCache := redis.MustNewCache[app.GroupDetailView](redisClient, app.GroupDetailCachePrefix, cfg.Cache.TTL)
	pendingCache := redis.MustNewCache[app.PendingInvitationsView](redisClient, app.PendingInvitationsCachePrefix, cfg.Cache.TTL)

	// Services.
	groupService := app.NewGroupService(groups, memberships, groupsCache, detailCache, log)
	groupQueries := app.NewGroupQueryService(groups, memberships, users, groupsCache, detailCache, log)
	invitationService := app.NewInvitationService(invitations, groups, memberships, users, pendingCache, groupsCache, log)
	invitationQueries := app.NewInvitationQueryService(invitationService, pendingCache, log)
	userService := app.NewUserService(users, identities, groups, passwordConfigured, log)
	passwordService := app.NewPasswordChangeService(identityClient, users, passwordPolicy(cfg), passwordConfigured, log)

	// Handlers and routing.
	v := validator.New()
	handlers := infrahttp.Handlers{
		Health:     handler.NewHealthHandler(handler.WithDatabase(db), handler.WithRedis(redisClient)),
		Group:      handler.NewGroupHandler(groupService, groupQueries, invitationQueries, log),
		Invitation: handler.NewInvitationHandler(invitationService, invitationQueries, log),
		User:       handler.NewUserHandler(userService, passwordService, v, log),
	}

	router := infrahttp.NewRouter(cfg, log, tokens, handlers)
	server := infrahttp.NewServer(cfg, log, router)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("application stopped")
	return nil
}

func migrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := initLogger(cfg)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeWithLog(db.Close, "database", log)

	applied, err := migrations.NewRunner(db.DB).Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("migrations applied", "count", applied)
	return nil
}

func initLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

func passwordPolicy(cfg *config.Config) password.Policy {
	return password.Policy{
		MinLength:        cfg.Password.MinLength,
		RequireLowercase: cfg.Password.RequireLowercase,
		RequireUppercase: cfg.Password.RequireUppercase,
		RequireNumber:    cfg.Password.RequireNumber,
		RequireSymbol:    cfg.Password.RequireSymbol,
	}
}

func closeWithLog(closeFn func() error, name string, log *logger.Logger) {
	if err := closeFn(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}
