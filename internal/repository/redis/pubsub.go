package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type ListingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewListingsPubSub(rdb *redis.Client) *ListingsPubSub {
	return &ListingsPubSub{
		rdb:     rdb,
		channel: ChannelListingsChanged(),
	}
}

type listingChangedMsg struct {
	Type      string `json:"type"`
	ListingID int64  `json:"listing_id"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *ListingsPubSub) PublishListingChanged(ctx context.Context, listingID int64) error {
	msg := listingChangedMsg{
		Type:      "listing_changed",
		ListingID: listingID,
		TsUnix:    time.Now().Unix(),
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis.ListingsPubSub.PublishListingChanged: %w", err)
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks, calling handler for every listing-changed message until
// ctx is done or the subscription closes.
func (p *ListingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, listingID int64)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev listingChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.ListingID != 0 {
				handler(ctx, ev.ListingID)
			}
		}
	}
}

// ListingEvents drops cached data of a changed listing locally and tells
// the other instances to do the same.
type ListingEvents struct {
	cache  *Cache
	pubsub *ListingsPubSub
}

func NewListingEvents(cache *Cache, pubsub *ListingsPubSub) *ListingEvents {
	return &ListingEvents{cache: cache, pubsub: pubsub}
}

func (e *ListingEvents) InvalidateListing(ctx context.Context, listingID int64) error {
	return e.cache.InvalidateListing(ctx, listingID)
}

func (e *ListingEvents) PublishListingChanged(ctx context.Context, listingID int64) error {
	return e.pubsub.PublishListingChanged(ctx, listingID)
}
