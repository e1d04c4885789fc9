package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mediadex/internal/library"
)

func refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the library index from the playlist folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			entries, warnings, err := a.service.Refresh()
			if err != nil {
				return err
			}
			if a.quiet {
				return nil
			}
			pterm.Success.Printfln("%d entries indexed", len(entries))
			for _, w := range warnings {
				pterm.Warning.Println(w.String())
			}
			return nil
		},
	}
}

func lsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [query]",
		Short: "List library entries, optionally filtered",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			if _, _, err := a.service.Refresh(); err != nil {
				return err
			}
			entries := a.service.Entries()
			if len(args) == 1 {
				entries = a.service.Filter(args[0])
			}
			return printEntries(entries)
		},
	}
}

func printEntries(entries []library.Entry) error {
	rows := pterm.TableData{{"NAME", "TYPE", "ARTIST", "ALBUM", "PATH"}}
	for _, e := range entries {
		rows = append(rows, []string{e.Name, string(e.Type), e.Artist, e.Album, e.Path})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
