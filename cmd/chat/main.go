package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/healthchat/internal/app"
	"github.com/zhouzirui/healthchat/internal/client"
	"github.com/zhouzirui/healthchat/internal/config"
	"github.com/zhouzirui/healthchat/internal/loop"
	"github.com/zhouzirui/healthchat/internal/service/render"
	"github.com/zhouzirui/healthchat/internal/store"
	"github.com/zhouzirui/healthchat/internal/tui"
)

var supportedLanguages = []string{"en", "st"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "chat",
		Short:        "Terminal health assistant chat",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg)
		},
	}
	root.AddCommand(newSessionsCmd(), newAskCmd())
	return root
}

// runChat drives the loop and the terminal program until the user quits.
func runChat(ctx context.Context, cfg *config.ClientConfig) error {
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer logFile.Close()
	config.SetupLogger(logFile, cfg.LogLevel)

	kv, transport, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer kv.Close()
	if closer, ok := transport.(io.Closer); ok {
		defer closer.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := loop.New()
	var program *tea.Program
	bridge := tui.NewBridge(func(msg tea.Msg) { program.Send(msg) })

	ctrl := app.New(ctx, runner, store.NewPersistence(kv), transport, app.Surfaces{
		View:     render.NewTranscript(bridge.OnTranscript),
		Sidebar:  bridge,
		Composer: bridge,
	}, app.Options{
		Welcome:        cfg.Welcome,
		Language:       cfg.Language,
		RevealTick:     cfg.RevealTick,
		RequestTimeout: cfg.RequestTimeout,
	})
	program = tea.NewProgram(tui.NewModel(ctrl, languageOrder(cfg.Language)), tea.WithAltScreen())

	eg, groupCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := runner.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		defer cancel()
		go func() {
			<-groupCtx.Done()
			program.Quit()
		}()
		ctrl.Start()
		_, err := program.Run()
		return err
	})

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("chat exited with error")
		return err
	}
	log.Info().Msg("chat closed")
	return nil
}

func openBackends(ctx context.Context, cfg *config.ClientConfig) (store.KV, client.Transport, error) {
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, nil, err
	}
	kv, err := store.Open(ctx, opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open session store")
	}
	transport, err := client.New(cfg.Transport, cfg.Endpoint, cfg.RequestTimeout)
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	return kv, transport, nil
}

// languageOrder puts the configured tag first so the selector starts on it.
func languageOrder(preferred string) []string {
	out := []string{preferred}
	for _, lang := range supportedLanguages {
		if lang != preferred {
			out = append(out, lang)
		}
	}
	return out
}
