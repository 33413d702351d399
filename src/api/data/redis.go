package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
	"go.uber.org/zap"
)

const (
	noncePrefix       = "nonce:"
	leaderboardPrefix = "leaderboard:"
	streamEvents      = "trustchain.events"

	leaderboardTTL = 15 * time.Second
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetAndDelNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.GetDel(ctx, noncePrefix+addr).Result()
}

// CachedLeaderboard returns the cached JSON body for a leaderboard
// page, or "" on miss.
func CachedLeaderboard(ctx context.Context, rdb *redis.Client, key string) string {
	body, err := rdb.Get(ctx, leaderboardPrefix+key).Result()
	if err != nil {
		return ""
	}
	return body
}

func CacheLeaderboard(ctx context.Context, rdb *redis.Client, key, body string) {
	_ = rdb.Set(ctx, leaderboardPrefix+key, body, leaderboardTTL).Err()
}

// StreamSink mirrors engine events to a redis stream for push
// consumers. The durable copy lives in the events table; stream
// failures are logged, not surfaced.
type StreamSink struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewStreamSink(rdb *redis.Client, log *zap.Logger) *StreamSink {
	return &StreamSink{rdb: rdb, log: log}
}

func (s *StreamSink) Publish(ctx context.Context, ev engine.Event) {
	values := map[string]interface{}{
		"type":    string(ev.Type),
		"address": ev.Address,
		"time":    ev.At.Unix(),
	}
	if ev.ProposalID != 0 {
		values["proposal_id"] = ev.ProposalID
	}
	for k, v := range ev.Payload {
		values["data_"+k] = v
	}
	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: values,
	}).Err()
	if err != nil {
		s.log.Warn("event stream publish failed",
			zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
