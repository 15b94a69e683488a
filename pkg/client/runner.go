package client

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cfoust/raingame/pkg/game"
	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/terminal"
	"github.com/cfoust/raingame/pkg/utils"

	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
)

type Result uint8

const (
	ResultWin Result = iota
	ResultLose
	// The server went away before either player lost
	ResultDisconnected
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLose:
		return "lose"
	case ResultDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Headline is what the final screen and the result log say.
func (r Result) Headline() string {
	switch r {
	case ResultWin:
		return "YOU WIN!"
	case ResultLose:
		return "YOU LOSE!"
	}
	return "CONNECTION LOST"
}

// Runner is the engine loop. It polls the terminal, ticks the engine once
// per TickInterval and draws the playfield.
type Runner struct {
	engine      *game.Engine
	device      terminal.Device
	toManager   *utils.Queue[P.Message]
	fromManager *utils.Queue[P.Message]
	logger      zerolog.Logger

	// Attack words dropped on us by the opponent
	attacks int
}

func NewRunner(
	engine *game.Engine,
	device terminal.Device,
	toManager, fromManager *utils.Queue[P.Message],
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		engine:      engine,
		device:      device,
		toManager:   toManager,
		fromManager: fromManager,
		logger:      logger,
	}
}

// Run plays until the match is decided. Cancelling ctx forfeits.
func (r *Runner) Run(ctx context.Context) Result {
	defer func() {
		r.fromManager.Close()
		r.fromManager.Drain()
		r.toManager.Finish()
	}()

	ticker := time.NewTicker(r.engine.Config().TickInterval)
	defer ticker.Stop()

	for {
		if result, over := r.step(); over {
			r.logger.Info().
				Stringer("result", result).
				Int("score", r.engine.Score()).
				Msg("game over")
			return result
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			r.engine.Forfeit()
			r.send(P.GameOver)
			return ResultLose
		}
	}
}

// receive handles everything the manager has queued without blocking.
func (r *Runner) receive() (Result, bool) {
	for {
		select {
		case message, ok := <-r.fromManager.Receive():
			if !ok {
				return ResultDisconnected, true
			}

			switch message {
			case P.GameOver:
				r.engine.SetState(game.StateWin)
				return ResultWin, true
			case P.Attacked:
				r.logger.Debug().Msg("attacked by opponent")
				r.engine.SpawnAttackWord()
				r.attacks++
			}
		default:
			return 0, false
		}
	}
}

func (r *Runner) Attacks() int {
	return r.attacks
}

func (r *Runner) send(message P.Message) {
	if err := r.toManager.Send(message); err != nil {
		r.logger.Debug().Stringer("message", message).Err(err).Msg("manager is gone")
	}
}

// input applies the pressed key. Printable runes are returned so that
// Tick can append them.
func (r *Runner) input(event terminal.KeyEvent) opt.Option[rune] {
	switch event.Key {
	case terminal.KeyBackspace:
		r.engine.PopInput()
	case terminal.KeyEnter:
		if r.engine.CommitInput() == game.StateCompleteAttackWord {
			r.logger.Debug().Msg("completed attack word")
			r.send(P.Attacked)
		}
	case terminal.KeyEscape, terminal.KeyInterrupt:
		r.logger.Info().Msg("forfeiting")
		r.engine.Forfeit()
	case terminal.KeyRune:
		switch {
		case event.Rune == '=' || event.Rune == '\b' || event.Rune == 0x7f:
			r.engine.PopInput()
		case unicode.IsPrint(event.Rune):
			return opt.Some(event.Rune)
		}
	}

	return opt.None[rune]()
}

func (r *Runner) step() (Result, bool) {
	if result, over := r.receive(); over {
		return result, true
	}

	pressed := opt.None[rune]()
	if key := r.device.PollKey(); opt.IsSome(key) {
		pressed = r.input(key.Value)
	}

	state := r.engine.State()
	if !state.Over() {
		state = r.engine.Tick(pressed)
	}

	if state == game.StateLose {
		r.send(P.GameOver)
		return ResultLose, true
	}

	r.render()
	return 0, false
}

func rightAligned(width int, text string) int {
	return max(0, width-utf8.RuneCountInString(text))
}

func (r *Runner) render() {
	config := r.engine.Config()
	d := r.device

	d.Clear()

	d.Draw(0, 0, fmt.Sprintf("Score: %d", r.engine.Score()), terminal.ColorDefault)

	for _, word := range r.engine.Words() {
		color := terminal.ColorWhite
		if word.Kind == game.KindAttack {
			color = terminal.ColorRed
		}
		d.Draw(word.Row(), word.Column(), word.Text, color)
	}

	life := fmt.Sprintf("LIFE: %d", r.engine.Life())
	d.Draw(0, rightAligned(config.Width, life), life, terminal.ColorGreen)

	attack := fmt.Sprintf("ATTACK: %s", r.engine.AttackWord())
	d.Draw(1, rightAligned(config.Width, attack), attack, terminal.ColorRed)

	d.Draw(config.DeadlineRow(), 0, strings.Repeat("-", config.Width), terminal.ColorYellow)
	d.Draw(config.Height-1, 0, "> "+r.engine.Input(), terminal.ColorDefault)

	d.Flip()
}

// ShowResult draws the final screen and returns once a key is pressed.
func (r *Runner) ShowResult(ctx context.Context, result Result, delay time.Duration) {
	d := r.device

	d.Clear()
	d.Draw(0, 0, result.Headline(), terminal.ColorDefault)
	d.Draw(1, 0, fmt.Sprintf("Final Score: %d", r.engine.Score()), terminal.ColorDefault)
	d.Flip()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}

	// Keys typed during the game should not dismiss the screen
	for opt.IsSome(d.PollKey()) {
	}

	d.Draw(2, 0, "Press any key to exit...", terminal.ColorDefault)
	d.Flip()

	ticker := time.NewTicker(r.engine.Config().TickInterval)
	defer ticker.Stop()

	for {
		if opt.IsSome(d.PollKey()) {
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
