package config

import (
	"net"
	"strconv"
	"time"

	"github.com/cfoust/raingame/pkg/client"
	"github.com/cfoust/raingame/pkg/game"
	"github.com/cfoust/raingame/pkg/relay"
)

type RedisSettings struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServerSettings struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	Transport         string        `yaml:"transport"`
	QueueCapacity     int           `yaml:"queueCapacity"`
	MessagesPerSecond float64       `yaml:"messagesPerSecond"`
	DBPath            string        `yaml:"dbPath"`
	Redis             RedisSettings `yaml:"redis"`
}

func (s ServerSettings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s ServerSettings) Relay() relay.Config {
	return relay.Config{
		QueueCapacity:     s.QueueCapacity,
		MessagesPerSecond: s.MessagesPerSecond,
	}
}

type ClientSettings struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Transport     string        `yaml:"transport"`
	QueueCapacity int           `yaml:"queueCapacity"`
	LogDirectory  string        `yaml:"logDirectory"`
	Vocabulary    string        `yaml:"vocabulary"`
	Seed          uint64        `yaml:"seed"`
	ResultDelay   time.Duration `yaml:"resultDelay"`
}

func (c ClientSettings) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type GameSettings struct {
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	Life          int           `yaml:"life"`
	SpawnInterval time.Duration `yaml:"spawnInterval"`
	TickInterval  time.Duration `yaml:"tickInterval"`
	BaseSpeed     float64       `yaml:"baseSpeed"`
	SpeedDivisor  float64       `yaml:"speedDivisor"`
	MinSpeed      float64       `yaml:"minSpeed"`
}

func (g GameSettings) Engine() game.Config {
	return game.Config{
		Width:         g.Width,
		Height:        g.Height,
		Life:          g.Life,
		SpawnInterval: g.SpawnInterval,
		TickInterval:  g.TickInterval,
		BaseSpeed:     g.BaseSpeed,
		SpeedDivisor:  g.SpeedDivisor,
		MinSpeed:      g.MinSpeed,
	}
}

type Config struct {
	Server ServerSettings `yaml:"server"`
	Client ClientSettings `yaml:"client"`
	Game   GameSettings   `yaml:"game"`
}

// Player is everything the client needs to play one match.
func (c *Config) Player() client.Config {
	return client.Config{
		Game:          c.Game.Engine(),
		QueueCapacity: c.Client.QueueCapacity,
		LogDirectory:  c.Client.LogDirectory,
		ResultDelay:   c.Client.ResultDelay,
	}
}
