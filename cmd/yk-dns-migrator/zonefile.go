package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newZoneFileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zonefile",
		Short: "Export or import records in zone file format.",
	}
	cmd.AddCommand(newZoneFileExportCommand(), newZoneFileImportCommand())
	return cmd
}

func newZoneFileExportCommand() *cobra.Command {
	opts := zoneOptions{}
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the records of a zone as a zone file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			text, err := a.orch.ExportZoneFile(cmd.Context(), a.zoneFor(opts.zone, opts.domain))
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = fmt.Fprint(a.out, text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return fmt.Errorf("write zone file: %w", err)
			}
			a.log.Info("zone file written", "path", output)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout.")
	return cmd
}

func newZoneFileImportCommand() *cobra.Command {
	opts := zoneOptions{}
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create every record of a zone file. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read zone file: %w", err)
			}
			res, err := a.orch.ImportZoneFile(cmd.Context(), a.zoneFor(opts.zone, opts.domain), string(data))
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	opts.bind(cmd)
	return cmd
}
