package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/config"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
	_ "github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns/providers"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/migrate"
	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/resolver"
)

var Version = "dev"

type appKey struct{}

// app is built once per invocation from the loaded configuration.
type app struct {
	cfg      *config.Config
	zones    *config.ZoneMap
	provider dns.Provider
	resolver *resolver.Client
	orch     *migrate.Orchestrator
	log      logr.Logger
	out      io.Writer
}

func main() {
	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)

	cmd := newRootCommand(&opts)
	if err := cmd.ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(opts *zap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "yk-dns-migrator",
		Short:         "Manage DNS zones and migrate domains onto a DNS provider.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(opts)))
			a, err := newApp(ctrl.Log.WithName("setup"))
			if err != nil {
				return err
			}
			a.out = cmd.OutOrStdout()
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cmd.AddCommand(
		newRecordsCommand(),
		newZonesCommand(),
		newZoneFileCommand(),
		newDetectCommand(),
		newReplicateCommand(),
		newMigrateCommand(),
		newPropagationCommand(),
		newValidateCommand(),
	)
	return cmd
}

func newApp(log logr.Logger) (*app, error) {
	log.Info("starting yk-dns-migrator", "version", Version)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("unable to load provider config: %w", err)
	}
	log.Info("loaded provider config", "provider", cfg.Provider)

	provider, err := dns.NewProvider(cfg.Provider, ctrl.Log.WithName("dns-"+cfg.Provider), cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("unable to create DNS provider: %w", err)
	}

	res, err := resolver.New(ctrl.Log.WithName("resolver"), resolver.Options{
		BaseURL: cfg.Resolver.URL,
		Timeout: cfg.ResolverTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create resolver client: %w", err)
	}

	orch := migrate.New(ctrl.Log.WithName("migrate"), provider, res, migrate.Options{
		DetectConcurrency: cfg.Detection.Concurrency,
		ImportConcurrency: cfg.Import.Concurrency,
	})

	return &app{
		cfg:      cfg,
		zones:    cfg.ZoneMap(),
		provider: provider,
		resolver: res,
		orch:     orch,
		log:      log,
	}, nil
}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// zoneFor picks the zone to operate on: an explicit id first, then the
// configured zone for domain, then the provider default.
func (a *app) zoneFor(zoneID, domain string) string {
	if zoneID != "" {
		return zoneID
	}
	if domain != "" {
		if id, ok := a.zones.LookupZone(domain); ok {
			return id
		}
	}
	return ""
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
