package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mediadex/internal/app"
	"mediadex/internal/library"
)

func thumbCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "thumb <title>",
		Short: "Extract or look up the thumbnail for a library entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			if _, _, err := a.service.Refresh(); err != nil {
				return err
			}
			query := strings.Join(args, " ")
			entry, ok := findEntry(query, a.service.Entries())
			if !ok {
				return &app.CLIError{Code: app.ExitNoMatch, Msg: "no library entry named " + query}
			}
			path, err := a.service.Thumbnail(cmd.Context(), entry)
			if err != nil {
				return err
			}
			if path == "" {
				if !a.quiet {
					pterm.Info.Printfln("no thumbnail obtainable for %s", entry.Name)
				}
				return nil
			}
			pterm.Println(path)
			return nil
		},
	}
}

func findEntry(query string, entries []library.Entry) (library.Entry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Name, query) || e.Path == query {
			return e, true
		}
	}
	return library.Entry{}, false
}
