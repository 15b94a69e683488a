package vocab

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed words.txt
var defaultWords []byte

var ErrEmpty = errors.New("word list is empty")

// Source hands out uniformly random words from a fixed list. Repeats are
// allowed and nothing is ever used up.
type Source struct {
	words []string
	rng   *rand.Rand
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func read(r io.Reader) ([]string, error) {
	words := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// FromWords builds a source over a copy of words. rng may be nil.
func FromWords(words []string, rng *rand.Rand) (*Source, error) {
	if len(words) == 0 {
		return nil, ErrEmpty
	}

	if rng == nil {
		rng = newRand()
	}

	return &Source{
		words: append([]string(nil), words...),
		rng:   rng,
	}, nil
}

// Load reads one word per line. Blank lines and lines starting with # are
// skipped.
func Load(path string, rng *rand.Rand) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	words, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}

	source, err := FromWords(words, rng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return source, nil
}

// Default uses the word list compiled into the binary.
func Default(rng *rand.Rand) *Source {
	words, err := read(bytes.NewReader(defaultWords))
	if err != nil {
		panic(err)
	}

	source, err := FromWords(words, rng)
	if err != nil {
		panic(err)
	}

	return source
}

func (s *Source) Generate() string {
	return s.words[s.rng.IntN(len(s.words))]
}

func (s *Source) Len() int {
	return len(s.words)
}
