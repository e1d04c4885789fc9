package main

import (
	"context"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"mediadex/internal/dispatch"
)

func playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play <query>",
		Short: "Resolve a query and play or open the best match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			res, err := a.service.Play(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.quiet {
				return nil
			}
			switch res.Kind {
			case dispatch.KindDocument:
				pterm.Success.Printfln("opening document: %s", res.Title)
			default:
				pterm.Success.Printfln("playing: %s", res.Title)
				if a.service.Session().WaitReady(2 * time.Second) {
					pterm.Info.Println("remote control connected")
				}
			}
			return nil
		},
	}
}

func randomCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "random <audio|video|docs|opened>",
		Short:     "Play a random entry from a history log",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"audio", "video", "docs", "opened"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			selected, err := a.service.PlayRandom(args[0])
			if err != nil {
				return err
			}
			if !a.quiet {
				pterm.Success.Printfln("selected: %s", selected)
			}
			return nil
		},
	}
}

func pauseCommand() *cobra.Command {
	return controlCommand("pause", "Toggle pause on the running player")
}

func nextCommand() *cobra.Command {
	return controlCommand("next", "Skip to the next item")
}

func prevCommand() *cobra.Command {
	return controlCommand("prev", "Return to the previous item")
}

func controlCommand(verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			return a.service.Command(ctx, verb)
		},
	}
}
