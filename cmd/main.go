package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/teams-notifier/internal/config"
	"github.com/redhat-data-and-ai/teams-notifier/internal/delivery"
	"github.com/redhat-data-and-ai/teams-notifier/internal/dispatch"
	apperrors "github.com/redhat-data-and-ai/teams-notifier/internal/errors"
	"github.com/redhat-data-and-ai/teams-notifier/internal/logging"
	"github.com/redhat-data-and-ai/teams-notifier/internal/recipients"
	"github.com/redhat-data-and-ai/teams-notifier/internal/utils"
	"github.com/redhat-data-and-ai/teams-notifier/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   utils.ServiceName,
		Short: "Relay GitHub and GitLab review activity to Microsoft Teams",
		Long: `teams-notifier receives GitHub and GitLab webhooks, works out which
registered users care about the event (PR owners and mentioned aliases),
and posts a MessageCard to each user's Teams incoming webhook.

Running without a subcommand starts the server.`,
		Version:       utils.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the webhook server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:   "validate-config",
			Short: "Load and validate the user registry, then exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runValidateConfig(cmd)
			},
		},
	)

	return root
}

func runServe() error {
	cfg := config.Load()
	logging.InitLogger(cfg.Log.Level, "TEAMS-NOTIFIER")
	log := logging.GetLogger()
	defer log.Sync()

	users, err := config.LoadUsers(cfg.Users)
	if err != nil {
		log.Error("Refusing to start: %v", err)
		return err
	}

	registry := recipients.NewRegistry(users)
	sender := delivery.NewTeamsSender(log, cfg.Delivery.Timeout)
	app := newApplication(cfg, registry, sender, log)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("Shutdown failed: %v", err)
		}
	}()

	log.Info("🚀 %s %s starting on port %s", utils.ServiceName, utils.Version, cfg.Server.Port)
	log.Info("👥 Registered users: %d", registry.Len())
	log.Info("🔐 GitHub: %s, GitLab: %s", cfg.GitHubSecurityMode(), cfg.GitLabSecurityMode())
	if cfg.Notify.SelfNotify {
		log.Warn("⚠️  NOTIFY_SELF is on - users will be notified about their own comments")
	}

	return app.Listen(":" + cfg.Server.Port)
}

func runValidateConfig(cmd *cobra.Command) error {
	cfg := config.Load()

	users, err := config.LoadUsers(cfg.Users)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User registry OK: %d user(s)\n", len(users))
	for _, user := range users {
		fmt.Fprintf(out, "  - %s (github: %s, gitlab: %s, aliases: %d)\n",
			user.Name, orNone(user.GitHubUsername()), orNone(gitlabIdentity(user)), len(user.MentionAliases))
	}
	fmt.Fprintf(out, "GitHub security: %s\n", cfg.GitHubSecurityMode())
	fmt.Fprintf(out, "GitLab security: %s\n", cfg.GitLabSecurityMode())
	return nil
}

// newApplication builds the Fiber app. Kept separate from runServe so tests
// exercise the same routes and middleware.
func newApplication(cfg *config.Config, registry *recipients.Registry, sender delivery.Sender, log *logging.Logger) *fiber.App {
	coordinator := dispatch.NewCoordinator(registry, sender,
		recipients.Options{SelfNotify: cfg.Notify.SelfNotify}, log)

	notificationHandler := webhook.NewNotificationHandler(cfg, coordinator, log)
	healthHandler := webhook.NewHealthHandler(cfg, registry)
	managementHandler := webhook.NewManagementHandler(cfg, registry)
	errorHandler := apperrors.NewHandler(log)

	app := fiber.New(fiber.Config{
		AppName:               fmt.Sprintf("Teams Notifier %s", utils.Version),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler.FiberErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", healthHandler.HandleHealth)
	app.Get("/ready", healthHandler.HandleReady)

	app.Post("/webhook/github", notificationHandler.HandleGitHub)
	app.Post("/webhook/gitlab", notificationHandler.HandleGitLab)

	api := app.Group("/api")
	api.Get("/users", managementHandler.HandleUsers)
	api.Get("/system", managementHandler.HandleSystemInfo)

	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	return app
}

func gitlabIdentity(user config.User) string {
	name, id := user.GitLabUsername(), user.GitLabUserID()
	switch {
	case name != "" && id != "":
		return fmt.Sprintf("%s/%s", name, id)
	case id != "":
		return id
	default:
		return name
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
