package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuriy-kovalchuk/yk-dns-migrator/internal/dns"
)

type zoneOptions struct {
	zone   string
	domain string
}

func (o *zoneOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.zone, "zone", "", "Zone id. (default is the configured zone)")
	cmd.Flags().StringVar(&o.domain, "domain", "", "Pick the zone configured for this domain.")
}

type recordOptions struct {
	zoneOptions
	typ      string
	name     string
	content  string
	ttl      int
	priority int
	proxied  bool
}

func (o *recordOptions) bind(cmd *cobra.Command) {
	o.zoneOptions.bind(cmd)
	cmd.Flags().StringVarP(&o.typ, "type", "t", "", "Record type (A, AAAA, CNAME, MX, TXT, NS, SRV, CAA, PTR).")
	cmd.Flags().StringVarP(&o.name, "name", "n", "", "Record name.")
	cmd.Flags().StringVarP(&o.content, "content", "c", "", "Record content.")
	cmd.Flags().IntVar(&o.ttl, "ttl", 0, "TTL in seconds. (default is automatic)")
	cmd.Flags().IntVar(&o.priority, "priority", 0, "Priority for MX and SRV records.")
	cmd.Flags().BoolVar(&o.proxied, "proxied", false, "Proxy traffic through the provider.")
}

func (o *recordOptions) record(cmd *cobra.Command) (dns.Record, error) {
	typ, err := dns.ParseRecordType(o.typ)
	if err != nil {
		return dns.Record{}, err
	}
	r := dns.Record{Type: typ, Name: o.name, Content: o.content}
	if cmd.Flags().Changed("ttl") {
		r.TTL = dns.Int(o.ttl)
	}
	if cmd.Flags().Changed("priority") {
		r.Priority = dns.Int(o.priority)
	}
	if cmd.Flags().Changed("proxied") {
		r.Proxied = dns.Bool(o.proxied)
	}
	return r, r.Validate()
}

func newRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage DNS records in a zone.",
	}
	cmd.AddCommand(
		newRecordsListCommand(),
		newRecordsGetCommand(),
		newRecordsCreateCommand(),
		newRecordsUpdateCommand(),
		newRecordsDeleteCommand(),
		newRecordsExportCommand(),
		newRecordsImportCommand(),
	)
	return cmd
}

type listOptions struct {
	zoneOptions
	typ     string
	name    string
	content string
}

func (o *listOptions) bind(cmd *cobra.Command) {
	o.zoneOptions.bind(cmd)
	cmd.Flags().StringVarP(&o.typ, "type", "t", "", "Only records of this type.")
	cmd.Flags().StringVarP(&o.name, "name", "n", "", "Only records with this name.")
	cmd.Flags().StringVarP(&o.content, "content", "c", "", "Only records with this content.")
}

func (o *listOptions) filter() (dns.RecordFilter, error) {
	f := dns.RecordFilter{Name: o.name, Content: o.content}
	if o.typ != "" {
		t, err := dns.ParseRecordType(o.typ)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	return f, nil
}

func newRecordsListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records in a zone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			records, err := a.provider.ListRecords(cmd.Context(), a.zoneFor(opts.zone, opts.domain), filter)
			if err != nil {
				return err
			}
			return a.print(records)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecordsGetCommand() *cobra.Command {
	opts := zoneOptions{}
	cmd := &cobra.Command{
		Use:   "get RECORD_ID",
		Short: "Show a single record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			record, err := a.provider.GetRecord(cmd.Context(), a.zoneFor(opts.zone, opts.domain), args[0])
			if err != nil {
				return err
			}
			return a.print(record)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecordsCreateCommand() *cobra.Command {
	opts := recordOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			r, err := opts.record(cmd)
			if err != nil {
				return err
			}
			created, err := a.provider.CreateRecord(cmd.Context(), a.zoneFor(opts.zone, opts.domain), r)
			if err != nil {
				return err
			}
			return a.print(created)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecordsUpdateCommand() *cobra.Command {
	opts := recordOptions{}
	cmd := &cobra.Command{
		Use:   "update RECORD_ID",
		Short: "Replace a record, keeping its id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			r, err := opts.record(cmd)
			if err != nil {
				return err
			}
			updated, err := a.provider.UpdateRecord(cmd.Context(), a.zoneFor(opts.zone, opts.domain), args[0], r)
			if err != nil {
				return err
			}
			return a.print(updated)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecordsDeleteCommand() *cobra.Command {
	opts := zoneOptions{}
	cmd := &cobra.Command{
		Use:     "delete RECORD_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a record.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.provider.DeleteRecord(cmd.Context(), a.zoneFor(opts.zone, opts.domain), args[0]); err != nil {
				return err
			}
			return a.print(map[string]string{"deleted": args[0]})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecordsExportCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export records as JSON descriptors that can be imported elsewhere.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			managed, err := a.orch.ExportRecords(cmd.Context(), a.zoneFor(opts.zone, opts.domain), filter)
			if err != nil {
				return err
			}
			records := make([]dns.Record, 0, len(managed))
			for _, m := range managed {
				records = append(records, m.Record)
			}
			return a.print(records)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecordsImportCommand() *cobra.Command {
	opts := zoneOptions{}
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create every record of a JSON descriptor file. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read records: %w", err)
			}
			var records []dns.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse records: %w", err)
			}
			res, err := a.orch.ImportRecords(cmd.Context(), a.zoneFor(opts.zone, opts.domain), records)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	opts.bind(cmd)
	return cmd
}
