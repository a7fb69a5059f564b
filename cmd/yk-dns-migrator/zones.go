package main

import (
	"github.com/spf13/cobra"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

func newZonesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Manage zones.",
	}
	cmd.AddCommand(
		newZonesCreateCommand(),
		newZonesGetCommand(),
		newZonesListCommand(),
	)
	return cmd
}

func newZonesCreateCommand() *cobra.Command {
	var zoneType string
	cmd := &cobra.Command{
		Use:   "create DOMAIN",
		Short: "Create a zone for a domain.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := dns.ParseZoneType(zoneType)
			if err != nil {
				return err
			}
			zone, err := a.provider.CreateZone(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			return a.print(zone)
		},
	}
	cmd.Flags().StringVar(&zoneType, "type", "full", "Zone type: full or partial.")
	return cmd
}

func newZonesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [ZONE_ID]",
		Short: "Show a zone. (default is the configured zone)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			zone, err := a.provider.GetZone(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(zone)
		},
	}
}

func newZonesListCommand() *cobra.Command {
	var name, status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List zones visible to the configured credentials.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			zones, err := a.provider.ListZones(cmd.Context(), dns.ZoneFilter{Name: name, Status: dns.ZoneStatus(status)})
			if err != nil {
				return err
			}
			return a.print(zones)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Only the zone with this domain name.")
	cmd.Flags().StringVar(&status, "status", "", "Only zones with this status.")
	return cmd
}
