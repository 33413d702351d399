package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *memorySink) Publish(_ context.Context, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *memorySink) types() []EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

type memoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
	err      error
}

func (l *memoryLedger) Credit(_ context.Context, _ *gorm.DB, address string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.balances[address] += amount
	return nil
}

func (l *memoryLedger) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *memoryLedger) balance(address string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[address]
}

func newTestEngine(t *testing.T) (*Engine, *memorySink, *memoryLedger) {
	t.Helper()

	// Busy timeout makes concurrent writers wait instead of failing.
	dsn := filepath.Join(t.TempDir(), "engine.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	sink := &memorySink{}
	ledger := &memoryLedger{balances: make(map[string]uint64)}
	return New(db, DefaultConfig(), sink, ledger, zap.NewNop()), sink, ledger
}

func setClock(eng *Engine, at time.Time) {
	eng.now = func() time.Time { return at }
}

func addOperator(t *testing.T, eng *Engine, addr string) {
	t.Helper()
	require.NoError(t, eng.db.Create(&types.Operator{Address: addr}).Error)
}

// forceScore writes a stored score directly, standing in for degraded
// states fed by external systems.
func forceScore(t *testing.T, eng *Engine, addr string, score uint32) {
	t.Helper()
	err := eng.db.Model(&types.Profile{}).Where("address = ?", addr).
		Update("trust_score", score).Error
	require.NoError(t, err)
}

func mustProfile(t *testing.T, eng *Engine, addr, username string) {
	t.Helper()
	_, err := eng.CreateProfile(context.Background(), addr, username)
	require.NoError(t, err)
}
