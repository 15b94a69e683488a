package game

import (
	"math/rand/v2"
	"strings"
	"time"

	opt "github.com/repeale/fp-go/option"
)

type Vocabulary interface {
	Generate() string
}

// Engine is one player's half of a match. It is not safe for concurrent
// use; the client's game loop owns it.
type Engine struct {
	config Config
	words  Vocabulary
	rng    *rand.Rand

	// Spawn order, oldest first
	active []*Word
	// The last normal word spawned. Attack words never replace it.
	previous *span

	input  string
	attack string
	score  int
	life   int
	speed  float64
	state  State

	elapsed   time.Duration
	lastSpawn time.Duration
}

// NewEngine returns an engine in StartGame with a fresh attack word. rng
// may be nil.
func NewEngine(config Config, words Vocabulary, rng *rand.Rand) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e := &Engine{
		config: config,
		words:  words,
		rng:    rng,
		active: make([]*Word, 0),
		life:   config.Life,
		state:  StateStartGame,
	}
	e.attack = words.Generate()
	e.updateSpeed()

	return e, nil
}

func (e *Engine) updateSpeed() {
	speed := e.config.BaseSpeed + float64(e.score)/e.config.SpeedDivisor
	if speed < e.config.MinSpeed {
		speed = e.config.MinSpeed
	}
	e.speed = speed
}

// place picks a column for a word of the given length, redrawing until it
// clears the previous normal word. If no column could ever clear it, the
// first draw is used.
func (e *Engine) place(length int) float64 {
	limit := float64(e.config.Width - length)
	if limit <= 0 {
		return 0
	}

	if e.previous == nil || !e.previous.avoidable(length, limit) {
		return e.rng.Float64() * limit
	}

	for {
		x := e.rng.Float64() * limit
		if !e.previous.overlaps(x, length) {
			return x
		}
	}
}

func (e *Engine) spawn(kind Kind) *Word {
	word := &Word{
		Text: e.words.Generate(),
		Kind: kind,
	}
	word.X = e.place(word.Len())
	e.active = append(e.active, word)

	if kind == KindNormal {
		e.previous = &span{x: word.X, length: word.Len()}
	}

	return word
}

// Tick advances the simulation by one TickInterval. A pressed rune, if
// any, is appended to the input buffer first.
func (e *Engine) Tick(key opt.Option[rune]) State {
	if e.state.Over() {
		return e.state
	}

	if opt.IsSome(key) {
		e.PushInput(key.Value)
	}

	e.elapsed += e.config.TickInterval
	if e.elapsed-e.lastSpawn >= e.config.SpawnInterval {
		e.spawn(KindNormal)
		e.lastSpawn = e.elapsed
	}

	deadline := float64(e.config.DeadlineRow())
	remaining := e.active[:0]
	for _, word := range e.active {
		word.Y += e.speed
		if word.Y >= deadline {
			e.score -= word.Len()
			if e.life > 0 {
				e.life--
			}
			continue
		}
		remaining = append(remaining, word)
	}
	for i := len(remaining); i < len(e.active); i++ {
		e.active[i] = nil
	}
	e.active = remaining

	e.updateSpeed()

	if e.life <= 0 {
		e.state = StateLose
		return e.state
	}

	e.state = StateInProgress
	return e.state
}

func (e *Engine) PushInput(char rune) {
	e.input += string(char)
}

func (e *Engine) PopInput() {
	if e.input == "" {
		return
	}
	runes := []rune(e.input)
	e.input = string(runes[:len(runes)-1])
}

// CommitInput checks the input buffer against the falling words, newest
// first, and against the attack word. Both can match in one commit: both
// scores are applied and CompleteAttackWord is returned, since that is the
// outcome the opponent has to hear about. The buffer is always cleared.
func (e *Engine) CommitInput() State {
	typed := strings.TrimSpace(e.input)
	e.input = ""

	if e.state.Over() {
		return e.state
	}

	result := StateInProgress
	if typed == "" {
		e.state = result
		return result
	}

	for i := len(e.active) - 1; i >= 0; i-- {
		word := e.active[i]
		if word.Text != typed {
			continue
		}

		e.score += word.Len()
		copy(e.active[i:], e.active[i+1:])
		e.active[len(e.active)-1] = nil
		e.active = e.active[:len(e.active)-1]
		result = StateCompleteWord
		break
	}

	if typed == e.attack {
		e.score += len([]rune(e.attack))
		e.attack = e.words.Generate()
		result = StateCompleteAttackWord
	}

	e.state = result
	return result
}

// SpawnAttackWord drops one extra word immediately, ignoring the spawn
// interval.
func (e *Engine) SpawnAttackWord() {
	if e.state.Over() {
		return
	}
	e.spawn(KindAttack)
}

// Forfeit ends the match as a loss.
func (e *Engine) Forfeit() {
	if e.state.Over() {
		return
	}
	e.life = 0
	e.state = StateLose
}

// SetState is used when the outcome is decided elsewhere, e.g. the
// opponent lost.
func (e *Engine) SetState(state State) {
	e.state = state
}

func (e *Engine) Score() int {
	return e.score
}

func (e *Engine) Life() int {
	return e.life
}

func (e *Engine) Input() string {
	return e.input
}

func (e *Engine) AttackWord() string {
	return e.attack
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) SpeedFactor() float64 {
	return e.speed
}

func (e *Engine) Config() Config {
	return e.config
}

// Words returns a snapshot of the active words in spawn order.
func (e *Engine) Words() []Word {
	words := make([]Word, len(e.active))
	for i, word := range e.active {
		words[i] = *word
	}
	return words
}
