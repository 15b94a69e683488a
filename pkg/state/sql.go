package state

import (
	"context"
	"time"

	"github.com/cfoust/raingame/pkg/relay"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Entity struct {
	ID uint `gorm:"primaryKey"`
}

// A Match is one finished relay match. Clients are anonymous, so peers are
// only known by address.
type Match struct {
	Entity

	// Numbered by the relay, starting from 1 every time it starts
	Number  uint64
	Started time.Time
	Ended   time.Time

	FirstPeer     string `gorm:"size:64"`
	SecondPeer    string `gorm:"size:64"`
	FirstExit     string `gorm:"size:16"`
	SecondExit    string `gorm:"size:16"`
	FirstRelayed  int
	SecondRelayed int

	// 0 or 1, -1 if nobody won
	Winner int
}

func matchFromSummary(summary relay.Summary) Match {
	return Match{
		Number:        summary.ID,
		Started:       summary.Started,
		Ended:         summary.Ended,
		FirstPeer:     summary.Peers[0],
		SecondPeer:    summary.Peers[1],
		FirstExit:     summary.Exits[0].String(),
		SecondExit:    summary.Exits[1].String(),
		FirstRelayed:  summary.Relayed[0],
		SecondRelayed: summary.Relayed[1],
		Winner:        summary.Winner(),
	}
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Match{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, summary relay.Summary) error {
	match := matchFromSummary(summary)
	return s.db.WithContext(ctx).Create(&match).Error
}

// Recent returns up to limit matches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Match, error) {
	var matches []Match
	err := s.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&matches).
		Error
	return matches, err
}

func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
