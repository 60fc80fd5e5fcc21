package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/infra/client"
)

var (
	endpoint string
	apiKey   string
	timeout  time.Duration

	promptColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	botColor    = color.New(color.FgGreen, color.Bold).SprintFunc()
	errColor    = color.New(color.FgRed).SprintFunc()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chatcli",
		Short:         "Talk to a running Smart Run AI chatbot relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&endpoint, "url", "http://localhost:8080/chatbot", "chatbot endpoint")
	root.PersistentFlags().StringVar(&apiKey, "apikey", os.Getenv("SMARTRUNAI_ANON_KEY"), "value for the apikey header, if the host requires one")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "upper bound for a single reply")

	root.AddCommand(askCmd(), chatCmd())
	return root
}

func newClient() *client.Client {
	var opts []client.Option
	if apiKey != "" {
		opts = append(opts, client.WithHeader("apikey", apiKey), client.WithHeader("Authorization", "Bearer "+apiKey))
	}
	return client.New(endpoint, opts...)
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the streamed reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			history := []model.ChatMessage{{Role: model.RoleUser, Content: strings.Join(args, " ")}}
			_, err := runTurn(ctx, newClient(), history, cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (empty line or /exit to quit)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			c := newClient()
			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())
			var history []model.ChatMessage

			for {
				fmt.Fprint(out, promptColor("you> "))
				if !in.Scan() {
					return in.Err()
				}
				line := strings.TrimSpace(in.Text())
				if line == "" || line == "/exit" {
					return nil
				}
				history = append(history, model.ChatMessage{Role: model.RoleUser, Content: line})
				if len(history) > model.MaxMessages {
					history = history[len(history)-model.MaxMessages:]
				}

				fmt.Fprint(out, botColor("bot> "))
				turnCtx, cancel := context.WithTimeout(ctx, timeout)
				reply, err := runTurn(turnCtx, c, history, out)
				cancel()
				fmt.Fprintln(out)
				if err != nil {
					fmt.Fprintln(out, errColor(err.Error()))
				}
				history = append(history, model.ChatMessage{Role: model.RoleAssistant, Content: reply})
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}
