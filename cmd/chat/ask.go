package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/healthchat/internal/client"
	"github.com/zhouzirui/healthchat/internal/config"
	"github.com/zhouzirui/healthchat/internal/service/send"
)

func newAskCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.Language
			}
			transport, err := client.New(cfg.Transport, cfg.Endpoint, cfg.RequestTimeout)
			if err != nil {
				return err
			}
			if closer, ok := transport.(io.Closer); ok {
				defer closer.Close()
			}
			return ask(cmd.Context(), transport, cmd.OutOrStdout(), strings.Join(args, " "), lang)
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language tag sent with the question (en or st)")
	return cmd
}

func ask(ctx context.Context, transport client.Transport, out io.Writer, question, lang string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("question is empty")
	}
	reply, err := transport.Send(ctx, client.Request{Message: question, Lang: lang})
	if err != nil {
		fmt.Fprintln(out, send.FallbackText)
		return err
	}
	fmt.Fprintln(out, reply)
	return nil
}
