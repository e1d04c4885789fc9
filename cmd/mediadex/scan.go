package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mediadex/internal/app"
)

func scanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan folders into descriptors and history logs",
	}
	for _, kind := range []string{app.ScanMKV, app.ScanMP4, app.ScanPDF, app.ScanMusic} {
		cmd.AddCommand(scanKindCommand(kind))
	}
	cmd.AddCommand(scanAutoCommand())
	return cmd
}

func scanKindCommand(kind string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <folder>", kind),
		Short: fmt.Sprintf("Scan a folder for %s content", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			sum, err := a.service.Scan(kind, args[0])
			if err != nil {
				return err
			}
			if !a.quiet {
				pterm.Success.Printfln("%d descriptors written, %d new history entries", sum.Descriptors, sum.LoggedPaths)
			}
			return nil
		},
	}
}

func scanAutoCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Scan every folder configured in the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			sum, err := a.service.AutoScan(force)
			if err != nil {
				return err
			}
			if a.quiet {
				return nil
			}
			if sum.Empty() {
				pterm.Info.Println("nothing scanned (auto-scan disabled or no new files)")
			} else {
				pterm.Success.Printfln("%d descriptors written, %d new history entries", sum.Descriptors, sum.LoggedPaths)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "run even when auto-scan is disabled")
	return cmd
}
