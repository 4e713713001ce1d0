package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"impactdash/app"
	"impactdash/internal/config"
	"impactdash/internal/container"
)

func newAskCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the chatbot one question from the terminal",
		Long: `ask sends one question through the same chat pipeline as POST /api/chat
and prints the answer rendered as markdown. The daily quota does not apply.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c, err := container.New(ctx, cfg, logger, container.Options{})
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			reply, err := c.Chat.Reply(ctx, app.ChatRequest{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, reply.Message)
				return nil
			}
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(80),
			)
			if err != nil {
				fmt.Fprintln(out, reply.Message)
				return nil
			}
			rendered, err := renderer.Render(reply.Message)
			if err != nil {
				fmt.Fprintln(out, reply.Message)
				return nil
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown answer without rendering")
	return cmd
}
