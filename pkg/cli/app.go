package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/identity"
	"github.com/stepup-hq/stepup/pkg/listaccess"
	"github.com/stepup-hq/stepup/pkg/listclient"
	"github.com/stepup-hq/stepup/pkg/observability"
	"github.com/stepup-hq/stepup/pkg/roles"
	"github.com/stepup-hq/stepup/pkg/workflow"
)

// app wires the full stack for one CLI invocation: configuration, identity,
// the list store client, role resolution, and the workflow engine.
type app struct {
	env      *config.Environment
	cliLog   *logrus.Logger
	log      *observability.Logger
	provider *identity.Provider
	records  *listaccess.Records
	resolver *roles.Resolver
	engine   *workflow.Engine
}

func newApp(ctx context.Context) (*app, error) {
	env, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cliLog := setupLogger(os.Getenv("STEPUP_LOG_LEVEL"))
	log := observability.NewLogger(env.LogLevel, os.Stderr)

	cliLog.WithFields(logrus.Fields{
		"site":  env.Site.SiteID,
		"lists": len(env.Site.Lists),
	}).Debug("configuration loaded")

	store := identity.NewAccountStore(env.Identity.AccountFile)
	provider, err := identity.NewProvider(ctx, env.Identity, store, log)
	if err != nil {
		return nil, err
	}
	provider.Start(ctx)
	if err := provider.WaitReady(ctx); err != nil {
		return nil, err
	}

	client, err := listclient.New(env.Site, provider, log)
	if err != nil {
		return nil, err
	}
	cliLog.Debug("list store client ready")

	records := listaccess.NewRecords(client, env.Site, log)
	resolver := roles.NewResolver(records, env, roles.NewBroadcaster(), log)

	return &app{
		env:      env,
		cliLog:   cliLog,
		log:      log,
		provider: provider,
		records:  records,
		resolver: resolver,
		engine:   workflow.NewEngine(records),
	}, nil
}

func setupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// session resolves the role session for the signed-in account.
func (a *app) session(ctx context.Context) (*roles.Session, error) {
	return a.resolver.Resolve(ctx, a.provider.Identity())
}

// explainAuthError turns identity errors into actionable CLI messages.
func explainAuthError(err error) error {
	var interaction *identity.InteractionRequiredError
	if errors.As(err, &interaction) {
		return fmt.Errorf("sign-in required: open %s in a browser, then run 'stepup login -code <code> -state <state>'", interaction.LoginURL)
	}
	if errors.Is(err, identity.ErrAuthUnavailable) {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	return err
}
