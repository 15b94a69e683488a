package game

import (
	"fmt"
	"time"
)

// Config describes the playfield and pacing. An Engine never modifies it.
type Config struct {
	Width  int
	Height int
	Life   int

	SpawnInterval time.Duration
	TickInterval  time.Duration

	// Rows per tick are BaseSpeed + score/SpeedDivisor, never below MinSpeed.
	BaseSpeed    float64
	SpeedDivisor float64
	MinSpeed     float64
}

func DefaultConfig() Config {
	return Config{
		Width:         80,
		Height:        20,
		Life:          5,
		SpawnInterval: 2 * time.Second,
		TickInterval:  100 * time.Millisecond,
		BaseSpeed:     0.1,
		SpeedDivisor:  1000,
		MinSpeed:      0.01,
	}
}

// DeadlineRow is the row at which a falling word costs a life.
func (c Config) DeadlineRow() int {
	return c.Height - 2
}

func (c Config) Validate() error {
	if c.Width < 1 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.Height < 3 {
		return fmt.Errorf("height must be at least 3, got %d", c.Height)
	}
	if c.Life < 1 {
		return fmt.Errorf("life must be positive, got %d", c.Life)
	}
	if c.SpawnInterval <= 0 || c.TickInterval <= 0 {
		return fmt.Errorf("spawn and tick intervals must be positive")
	}
	if c.SpeedDivisor == 0 {
		return fmt.Errorf("speed divisor must not be zero")
	}
	if c.MinSpeed <= 0 {
		return fmt.Errorf("minimum speed must be positive, got %f", c.MinSpeed)
	}
	return nil
}
