package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"github.com/xtesports/xtesports/internal/admin"
	"github.com/xtesports/xtesports/internal/database"
	"github.com/xtesports/xtesports/internal/notify"
	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/storage"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/slogx"
	"github.com/xtesports/xtesports/internal/webui"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Args:  cobra.ExactArgs(0),
	Short: "Start the site",
	Long: `Serves tournament pages, registration, payments and the admin panel.

Options are read from the options file, secrets from the secrets file (session and form keys
are generated there on first run), and both can be overridden by environment variables or
a .env file.
`,
}

func newLogger(o *Options) *slog.Logger {
	return slogx.New(os.Stderr, o.LogLevel)
}

func ensureAdmin(ctx context.Context, users *userauth.Manager, o *Options) error {
	if o.Admin.Password == "" {
		return users.WarnIfNoUsers(ctx)
	}
	if _, err := users.EnsureAdmin(ctx, o.Admin.Username, o.Admin.Password); err != nil {
		return fmt.Errorf("ensure admin %q: %w", o.Admin.Username, err)
	}
	return nil
}

func runServer(ctx context.Context, log *slog.Logger, opts *Options) error {
	db, err := database.New(log, opts.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	users := userauth.NewManager(log, db, opts.Users)
	if err := ensureAdmin(ctx, users, opts); err != nil {
		return err
	}

	uploads, err := storage.New(ctx, opts.Storage)
	if err != nil {
		return fmt.Errorf("create upload storage: %w", err)
	}

	sender, err := notify.NewSender(log, opts.Mail)
	if err != nil {
		return fmt.Errorf("create mail sender: %w", err)
	}
	dispatcher := notify.NewDispatcher(log, sender, opts.Mail.SendTimeout)
	defer dispatcher.Close()

	payCfg := payment.Config{
		DB:         db,
		Notifier:   dispatcher,
		Uploads:    uploads,
		AdminEmail: opts.Mail.AdminEmail,
	}
	if opts.Payment.StripeKey != "" {
		payCfg.Provider = payment.NewStripeProvider(opts.Payment.StripeKey)
	} else {
		log.Warn("stripe key not set, only manual payments are available")
	}

	mux := http.NewServeMux()
	if err := webui.Handle(ctx, log, mux, "", webui.Config{
		Registrar:           tournament.NewRegistrar(log, db),
		Payments:            payment.NewFlow(log, payCfg, opts.Payment),
		Admin:               admin.NewService(log, db, uploads),
		UserManager:         users,
		SessionStoreFactory: db,
		Uploads:             uploads,
	}, opts.WebUI); err != nil {
		return fmt.Errorf("handle webui: %w", err)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(opts.SessionCleanupInterval),
		gocron.NewTask(func() {
			log.Info("cleaning up expired sessions")
			db.CleanupSessions()
		}),
	); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Warn("could not stop scheduler", slogx.Err(err))
		}
	}()

	servers, err := newServers(ctx, log, opts, mux)
	if err != nil {
		return fmt.Errorf("create servers: %w", err)
	}
	servers.Go()
	defer servers.Shutdown()

	<-ctx.Done()
	return nil
}

func init() {
	flags := addConfigFlags(serverCmd.Flags())

	serverCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		opts, err := flags.load()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log := newLogger(opts)
		return runServer(ctx, log, opts)
	}
}
