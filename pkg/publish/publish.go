// Package publish pushes snapshots to Redis so monitoring consumers can
// read the latest poll and a bounded history without scraping stdout.
package publish

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/rtstat-tools/rtstat/pkg/router"
	"github.com/rtstat-tools/rtstat/pkg/util"
)

// DefaultHistory is how many past snapshots are kept per router.
const DefaultHistory = 1000

// Publisher writes snapshots to one Redis instance.
type Publisher struct {
	client  *redis.Client
	history int64
}

// New connects to the Redis instance at addr ("host:port").
func New(addr string) *Publisher {
	return &Publisher{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		history: DefaultHistory,
	}
}

// Publish stores snap under <prefix>:latest and pushes it onto
// <prefix>:history, trimmed to the history bound.
func (p *Publisher) Publish(ctx context.Context, snap *router.Snapshot) error {
	data, err := snap.JSON()
	if err != nil {
		return err
	}

	prefix := keyPrefix(snap.Router)
	pipe := p.client.TxPipeline()
	pipe.Set(ctx, prefix+":latest", data, 0)
	pipe.LPush(ctx, prefix+":history", data)
	pipe.LTrim(ctx, prefix+":history", 0, p.history-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}

	util.Debugf("published snapshot under %s", prefix)
	return nil
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// keyPrefix derives the Redis key prefix from a router display name.
func keyPrefix(routerName string) string {
	return "rtstat:" + util.SanitizeName(routerName)
}
