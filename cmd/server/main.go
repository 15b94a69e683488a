package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfoust/raingame/pkg/config"
	"github.com/cfoust/raingame/pkg/ingress"
	"github.com/cfoust/raingame/pkg/relay"
	"github.com/cfoust/raingame/pkg/state"
	"github.com/cfoust/raingame/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Host      string   `help:"Address to listen on." short:"a"`
	Port      int      `help:"Port to listen on." short:"p"`
	Transport string   `help:"Transport clients connect with (tcp or ws)."`
	Configs   []string `help:"Configuration files, applied in order." name:"config" short:"c" type:"file"`

	DefaultConfig bool `help:"Write the default configuration to standard output and exit."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func serve(settings config.ServerSettings) error {
	transport, err := ingress.ParseTransport(settings.Transport)
	if err != nil {
		return err
	}

	listener, err := ingress.Listen(transport, settings.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", settings.Address(), err)
	}

	supervisor := relay.NewSupervisor(listener, settings.Relay())

	recorders := make([]state.Recorder, 0)
	if settings.DBPath != "" {
		store, err := state.Open(settings.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open match database: %w", err)
		}
		defer store.Close()

		recorders = append(recorders, store)
		log.Info().Msgf("recording matches to %s", settings.DBPath)
	}

	if settings.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     settings.Redis.Address,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})
		defer client.Close()

		recorders = append(recorders, state.NewCounters(client))
		log.Info().Msgf("counting matches in redis at %s", settings.Redis.Address)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(recorders) > 0 {
		go state.Follow(ctx, supervisor.Matches.Subscribe(), recorders...)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- supervisor.Run(ctx)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	cancel()
	return <-errc
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	kong.Parse(&CLI,
		kong.Name("raingame-server"),
		kong.Description("relay for two-player raingame matches"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf(
			"raingame-server %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	if CLI.DefaultConfig {
		os.Stdout.Write(config.DEFAULT)
		return
	}

	cfg, err := config.Process(CLI.Configs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	settings := cfg.Server
	if CLI.Host != "" {
		settings.Host = CLI.Host
	}
	if CLI.Port != 0 {
		settings.Port = CLI.Port
	}
	if CLI.Transport != "" {
		settings.Transport = CLI.Transport
	}

	if err := serve(settings); err != nil {
		writeError(err)
	}
}
