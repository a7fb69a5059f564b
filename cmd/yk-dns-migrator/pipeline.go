package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect DOMAIN",
		Short: "Detect the records a domain currently publishes.",
		Long: "Detect the records a domain currently publishes through a public resolver.\n" +
			"Only common record types at the apex and A records of a fixed list of\n" +
			"subdomains are probed, so records elsewhere are not found.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			scan, err := a.orch.Detector().Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			failed := []string{}
			for _, p := range scan.Failed() {
				failed = append(failed, fmt.Sprintf("%s %s: %v", p.Type, p.Name, p.Err))
			}
			return a.print(struct {
				Domain       string       `json:"domain"`
				Records      []dns.Record `json:"records"`
				FailedProbes []string     `json:"failed_probes"`
				Notes        []string     `json:"notes,omitempty"`
			}{scan.Domain, scan.Records, failed, scan.Notes})
		},
	}
}

func newReplicateCommand() *cobra.Command {
	opts := zoneOptions{}
	cmd := &cobra.Command{
		Use:   "replicate SOURCE_DOMAIN",
		Short: "Detect the records of a domain and create them in a zone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			res, err := a.orch.Replicator().Replicate(cmd.Context(), args[0], a.zoneFor(opts.zone, opts.domain))
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move a domain onto the provider.",
	}
	cmd.AddCommand(newMigrateStartCommand(), newMigrateRunCommand())
	return cmd
}

func newMigrateStartCommand() *cobra.Command {
	var zoneType string
	cmd := &cobra.Command{
		Use:   "start DOMAIN",
		Short: "Create the zone for a domain without copying records.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := dns.ParseZoneType(zoneType)
			if err != nil {
				return err
			}
			res, err := a.orch.StartMigration(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&zoneType, "type", "full", "Zone type: full or partial.")
	return cmd
}

func newMigrateRunCommand() *cobra.Command {
	var zoneType string
	cmd := &cobra.Command{
		Use:   "run DOMAIN",
		Short: "Create the zone for a domain and copy its detected records.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := dns.ParseZoneType(zoneType)
			if err != nil {
				return err
			}
			res, err := a.orch.MigrateWithDetection(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&zoneType, "type", "full", "Zone type: full or partial.")
	return cmd
}

type propagationOptions struct {
	nameservers []string
	zone        string
}

func (o *propagationOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.nameservers, "nameservers", nil, "Expected nameservers, comma separated.")
	cmd.Flags().StringVar(&o.zone, "zone", "", "Expect the nameservers assigned to this zone.")
}

// expected returns the nameservers to look for, taken from the zone when
// none were given.
func (o *propagationOptions) expected(cmd *cobra.Command, a *app) ([]string, error) {
	if len(o.nameservers) > 0 {
		return o.nameservers, nil
	}
	if o.zone == "" {
		return nil, fmt.Errorf("either --nameservers or --zone is required")
	}
	zone, err := a.provider.GetZone(cmd.Context(), o.zone)
	if err != nil {
		return nil, err
	}
	return zone.NameServers, nil
}

func newPropagationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propagation",
		Short: "Check whether a nameserver change is visible publicly.",
	}
	cmd.AddCommand(newPropagationCheckCommand(), newPropagationWaitCommand())
	return cmd
}

func newPropagationCheckCommand() *cobra.Command {
	opts := propagationOptions{}
	cmd := &cobra.Command{
		Use:   "check DOMAIN",
		Short: "Compare the public NS records of a domain with the expected nameservers.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			expected, err := opts.expected(cmd, a)
			if err != nil {
				return err
			}
			return a.print(a.orch.PropagationStatus(cmd.Context(), args[0], expected))
		},
	}
	opts.bind(cmd)
	return cmd
}

func newPropagationWaitCommand() *cobra.Command {
	opts := propagationOptions{}
	var interval, timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait DOMAIN",
		Short: "Poll until the expected nameservers are served for a domain.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			expected, err := opts.expected(cmd, a)
			if err != nil {
				return err
			}
			if err := a.orch.WaitForPropagation(cmd.Context(), args[0], expected, interval, timeout); err != nil {
				return err
			}
			return a.print(a.orch.PropagationStatus(cmd.Context(), args[0], expected))
		},
	}
	opts.bind(cmd)
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Time between checks.")
	cmd.Flags().DurationVar(&timeout, "timeout", 48*time.Hour, "Give up after this long.")
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [ZONE_ID]",
		Short: "Check that a zone is active, has nameservers and holds records.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			v, err := a.orch.ValidateZoneSetup(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(v)
		},
	}
}
