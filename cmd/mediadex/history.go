package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mediadex/internal/app"
)

func historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "history <audio|video|docs|opened>",
		Short:     "List the entries of a history log",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{app.HistoryAudio, app.HistoryVideo, app.HistoryDocs, app.HistoryDocOpened},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			entries, err := a.service.History(args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				if !a.quiet {
					pterm.Info.Printfln("no %s history", args[0])
				}
				return nil
			}
			for _, e := range entries {
				pterm.Println(e)
			}
			return nil
		},
	}
}
