package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mediadex/internal/app"
	"mediadex/internal/config"
)

func settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and edit the scan settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			settings, err := a.service.Settings()
			if err != nil {
				return err
			}
			printSettings(settings)
			return nil
		},
	}
	cmd.AddCommand(
		autoScanToggleCommand(),
		folderCommand("add-folder", "Add a folder to a scan kind", addScanFolder),
		folderCommand("rm-folder", "Remove a folder from a scan kind", removeScanFolder),
	)
	return cmd
}

func printSettings(s config.Settings) {
	state := "off"
	if s.AutoScanEnabled {
		state = "on"
	}
	pterm.Printfln("auto-scan: %s", state)
	for _, group := range []struct {
		kind    string
		folders []string
	}{
		{app.ScanMKV, s.ScanFolders.MKV},
		{app.ScanMP4, s.ScanFolders.MP4},
		{app.ScanPDF, s.ScanFolders.PDF},
		{app.ScanMusic, s.ScanFolders.Music},
	} {
		if len(group.folders) == 0 {
			continue
		}
		pterm.Printfln("%s: %s", group.kind, strings.Join(group.folders, ", "))
	}
}

func autoScanToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "autoscan <on|off>",
		Short:     "Enable or disable scanning on startup",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			settings, err := a.service.Settings()
			if err != nil {
				return err
			}
			switch args[0] {
			case "on":
				settings.AutoScanEnabled = true
			case "off":
				settings.AutoScanEnabled = false
			default:
				return &app.CLIError{Code: app.ExitUsage, Msg: fmt.Sprintf("autoscan takes on or off, not %q", args[0])}
			}
			if err := a.service.SaveSettings(settings); err != nil {
				return err
			}
			if !a.quiet {
				pterm.Success.Printfln("auto-scan %s", args[0])
			}
			return nil
		},
	}
}

func folderCommand(use, short string, apply func(*config.ScanFolders, string, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <mkv|mp4|pdf|music> <folder>", use),
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			settings, err := a.service.Settings()
			if err != nil {
				return err
			}
			if err := apply(&settings.ScanFolders, args[0], args[1]); err != nil {
				return err
			}
			if err := a.service.SaveSettings(settings); err != nil {
				return err
			}
			if !a.quiet {
				pterm.Success.Printfln("%s folders: %s", args[0], strings.Join(*foldersFor(&settings.ScanFolders, args[0]), ", "))
			}
			return nil
		},
	}
}

func foldersFor(f *config.ScanFolders, kind string) *[]string {
	switch kind {
	case app.ScanMKV:
		return &f.MKV
	case app.ScanMP4:
		return &f.MP4
	case app.ScanPDF:
		return &f.PDF
	case app.ScanMusic:
		return &f.Music
	default:
		return nil
	}
}

func addScanFolder(f *config.ScanFolders, kind, folder string) error {
	target := foldersFor(f, kind)
	if target == nil {
		return &app.CLIError{Code: app.ExitUsage, Msg: fmt.Sprintf("unknown scan kind %q", kind)}
	}
	for _, existing := range *target {
		if existing == folder {
			return nil
		}
	}
	*target = append(*target, folder)
	return nil
}

func removeScanFolder(f *config.ScanFolders, kind, folder string) error {
	target := foldersFor(f, kind)
	if target == nil {
		return &app.CLIError{Code: app.ExitUsage, Msg: fmt.Sprintf("unknown scan kind %q", kind)}
	}
	kept := (*target)[:0]
	for _, existing := range *target {
		if existing != folder {
			kept = append(kept, existing)
		}
	}
	*target = kept
	return nil
}
