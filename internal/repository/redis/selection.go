package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/redis/go-redis/v9"
)

const maxSelectionTxRetries = 5

var (
	ErrSelectionNotFound = errors.New("selection not found")
	ErrSelectionConflict = errors.New("selection modified concurrently")
)

// SelectionStore keeps one booking.Selection per viewer with a sliding TTL.
type SelectionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSelectionStore(rdb *redis.Client, ttl time.Duration) *SelectionStore {
	return &SelectionStore{rdb: rdb, ttl: ttl}
}

func (s *SelectionStore) Create(ctx context.Context, id string, sel booking.Selection) error {
	const op = "redis.SelectionStore.Create"

	b, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.rdb.SetNX(ctx, KeySelection(id), b, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrSelectionConflict)
	}

	return nil
}

func (s *SelectionStore) Get(ctx context.Context, id string) (booking.Selection, error) {
	const op = "redis.SelectionStore.Get"

	b, err := s.rdb.Get(ctx, KeySelection(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, ErrSelectionNotFound)
	}
	if err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	var sel booking.Selection
	if err := json.Unmarshal(b, &sel); err != nil {
		return booking.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	return sel, nil
}

// Update loads the selection, applies fn and writes the result back inside a
// WATCH transaction, retrying when another writer got there first. When fn
// returns discard=true the selection is deleted instead of saved. An error
// from fn aborts without writing.
func (s *SelectionStore) Update(
	ctx context.Context,
	id string,
	fn func(sel *booking.Selection) (discard bool, err error),
) (booking.Selection, error) {
	const op = "redis.SelectionStore.Update"

	key := KeySelection(id)
	var out booking.Selection

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSelectionNotFound
		}
		if err != nil {
			return err
		}

		var sel booking.Selection
		if err := json.Unmarshal(b, &sel); err != nil {
			return err
		}

		discard, err := fn(&sel)
		if err != nil {
			return err
		}

		nb, err := json.Marshal(sel)
		if err != nil {
			return err
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if discard {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, nb, s.ttl)
			}
			return nil
		}); err != nil {
			return err
		}

		out = sel
		return nil
	}

	for i := 0; i < maxSelectionTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return booking.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	return booking.Selection{}, fmt.Errorf("%s: %w", op, ErrSelectionConflict)
}
