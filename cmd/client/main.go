package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cfoust/raingame/pkg/client"
	"github.com/cfoust/raingame/pkg/config"
	"github.com/cfoust/raingame/pkg/ingress"
	"github.com/cfoust/raingame/pkg/terminal"
	"github.com/cfoust/raingame/pkg/version"
	"github.com/cfoust/raingame/pkg/vocab"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Write debug logs to client.log in the log directory."`

	Host       string   `help:"Address of the relay server." short:"a"`
	Port       int      `help:"Port of the relay server." short:"p"`
	Transport  string   `help:"Transport to connect with (tcp or ws)."`
	Configs    []string `help:"Configuration files, applied in order." name:"config" short:"c" type:"file"`
	Vocabulary string   `help:"File with one word per line." type:"file"`
	Seed       uint64   `help:"Seed for word choice and placement. 0 is random."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

// The terminal belongs to the game, so logs go to a file or nowhere.
func setupLogging(directory string) (io.Closer, error) {
	if !CLI.Debug {
		log.Logger = log.Output(io.Discard)
		return nil, nil
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(
		filepath.Join(directory, "client.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return nil, err
	}

	consoleWriter := zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Warn().Msg("debug logging enabled")
	return file, nil
}

func play(cfg *config.Config) (client.Outcome, error) {
	settings := cfg.Client

	seed := settings.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	var words *vocab.Source
	if settings.Vocabulary != "" {
		source, err := vocab.Load(settings.Vocabulary, rng)
		if err != nil {
			return client.Outcome{}, err
		}
		words = source
	} else {
		words = vocab.Default(rng)
	}

	transport, err := ingress.ParseTransport(settings.Transport)
	if err != nil {
		return client.Outcome{}, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := ingress.Dial(ctx, transport, settings.Address())
	if err != nil {
		return client.Outcome{}, fmt.Errorf("could not connect to %s: %w", settings.Address(), err)
	}
	log.Info().Uint64("seed", seed).Msgf("connected to %s", settings.Address())

	screen, err := terminal.NewScreen()
	if err != nil {
		conn.Close()
		return client.Outcome{}, err
	}
	defer screen.Close()

	return client.NewCoordinator(conn, screen, words, rng, cfg.Player()).Play(ctx)
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	kong.Parse(&CLI,
		kong.Name("raingame"),
		kong.Description("type the falling words before your opponent does"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Version {
		fmt.Printf(
			"raingame %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	cfg, err := config.Process(CLI.Configs)
	if err != nil {
		writeError(err)
	}

	if CLI.Host != "" {
		cfg.Client.Host = CLI.Host
	}
	if CLI.Port != 0 {
		cfg.Client.Port = CLI.Port
	}
	if CLI.Transport != "" {
		cfg.Client.Transport = CLI.Transport
	}
	if CLI.Vocabulary != "" {
		cfg.Client.Vocabulary = CLI.Vocabulary
	}
	if CLI.Seed != 0 {
		cfg.Client.Seed = CLI.Seed
	}

	closer, err := setupLogging(cfg.Client.LogDirectory)
	if err != nil {
		writeError(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	outcome, err := play(cfg)
	if errors.Is(err, client.ErrNotStarted) {
		writeError(fmt.Errorf("the server closed the connection before the game started"))
	}
	if err != nil {
		writeError(err)
	}

	fmt.Printf("%s with a score of %d\n", outcome.Result.Headline(), outcome.Score)
}
