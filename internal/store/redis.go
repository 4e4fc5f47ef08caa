package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"queuely/internal/logger"
)

const codeScanPattern = "queue:*:service_provider_id"

type pipelineFunc func(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)

// RedisStore implements Store on Redis. Read-modify-write cycles run as
// WATCH/MULTI/EXEC transactions and are retried when a watched key changes.
type RedisStore struct {
	rdb        *redis.Client
	maxRetries int
	log        *logger.Logger
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(rdb *redis.Client, maxRetries int, log *logger.Logger) *RedisStore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RedisStore{
		rdb:        rdb,
		maxRetries: maxRetries,
		log:        log.WithComponent("redis-store"),
	}
}

// Create writes all keys of a new queue, failing with ErrExists if the code is live
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	watched := []string{QueueKey(rec.Code), OwnerKey(rec.Code)}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var fnErr error
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, watched...).Result()
			if err != nil {
				fnErr = s.ioErr(ctx, "exists", err)
				return fnErr
			}
			if n > 0 {
				fnErr = ErrExists
				return fnErr
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.RPush(ctx, QueueKey(rec.Code), rec.Meta)
				pipe.Set(ctx, CounterKey(rec.Code), rec.BlockCounter, 0)
				pipe.Set(ctx, CapacityKey(rec.Code), rec.BlockCapacity, 0)
				pipe.Set(ctx, OwnerKey(rec.Code), rec.OwnerID, 0)
				if len(rec.Blocks) > 0 {
					pipe.RPush(ctx, BlocksKey(rec.Code), toArgs(rec.Blocks)...)
				}
				return nil
			})
			return err
		}, watched...)

		if fnErr != nil {
			return fnErr
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("create conflict, retrying", "code", rec.Code, "attempt", attempt+1)
			continue
		}
		return s.ioErr(ctx, "create", err)
	}
	return ErrConflict
}

// Exists reports whether the code is live
func (s *RedisStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.rdb.Exists(ctx, QueueKey(code)).Result()
	if err != nil {
		return false, s.ioErr(ctx, "exists", err)
	}
	return n > 0, nil
}

// Load reads every key of the queue inside MULTI/EXEC for a consistent snapshot
func (s *RedisStore) Load(ctx context.Context, code string) (*Record, error) {
	return s.readRecord(ctx, s.rdb.TxPipelined, code)
}

// LoadMany fetches metadata and owner for each code in one pipeline
func (s *RedisStore) LoadMany(ctx context.Context, codes []string) ([]*Record, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	metas := make([]*redis.StringCmd, len(codes))
	owners := make([]*redis.StringCmd, len(codes))
	capacities := make([]*redis.StringCmd, len(codes))

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, code := range codes {
			metas[i] = pipe.LIndex(ctx, QueueKey(code), 0)
			owners[i] = pipe.Get(ctx, OwnerKey(code))
			capacities[i] = pipe.Get(ctx, CapacityKey(code))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, s.ioErr(ctx, "load many", err)
	}

	out := make([]*Record, 0, len(codes))
	for i, code := range codes {
		meta, err := metas[i].Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			s.log.Warn("skipping unreadable queue", "code", code, "error", err)
			continue
		}
		capacity, _ := capacities[i].Int()
		out = append(out, &Record{
			Code:          code,
			OwnerID:       owners[i].Val(),
			BlockCapacity: capacity,
			Meta:          meta,
		})
	}
	return out, nil
}

// Apply runs fn inside a WATCH on the queue's mutable keys and commits its
// mutation with MULTI/EXEC. A concurrent write to a watched key aborts EXEC
// and the cycle is retried up to maxRetries times.
func (s *RedisStore) Apply(ctx context.Context, code string, fn ApplyFunc) error {
	watched := []string{QueueKey(code), CounterKey(code), BlocksKey(code)}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var fnErr error
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			rec, err := s.readRecord(ctx, tx.Pipelined, code)
			if err != nil {
				fnErr = err
				return err
			}

			mut, err := fn(rec)
			if err != nil {
				fnErr = err
				return err
			}
			if mut.Empty() {
				return nil
			}
			for i := range mut.SetBlocks {
				if i < 0 || i >= len(rec.Blocks) {
					fnErr = fmt.Errorf("block index %d out of range (%d blocks)", i, len(rec.Blocks))
					return fnErr
				}
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if mut.Meta != nil {
					pipe.LSet(ctx, QueueKey(code), 0, mut.Meta)
				}
				if mut.CounterDelta != 0 {
					pipe.IncrBy(ctx, CounterKey(code), mut.CounterDelta)
				}
				for i, raw := range mut.SetBlocks {
					pipe.LSet(ctx, BlocksKey(code), int64(i), raw)
				}
				if len(mut.AppendBlocks) > 0 {
					pipe.RPush(ctx, BlocksKey(code), toArgs(mut.AppendBlocks)...)
				}
				return nil
			})
			return err
		}, watched...)

		if fnErr != nil {
			return fnErr
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("apply conflict, retrying", "code", code, "attempt", attempt+1)
			continue
		}
		return s.ioErr(ctx, "apply", err)
	}

	s.log.Warn("apply retries exhausted", "code", code, "retries", s.maxRetries)
	return ErrConflict
}

// Delete removes all keys of the queue with a single DEL
func (s *RedisStore) Delete(ctx context.Context, code string) error {
	if err := s.rdb.Del(ctx, Keys(code)...).Err(); err != nil {
		return s.ioErr(ctx, "delete", err)
	}
	return nil
}

// Codes scans the owner keys of all live queues
func (s *RedisStore) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := s.rdb.Scan(ctx, 0, codeScanPattern, 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		code := strings.TrimSuffix(strings.TrimPrefix(key, "queue:"), ":service_provider_id")
		if code != "" && code != key {
			codes = append(codes, code)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, s.ioErr(ctx, "scan", err)
	}
	return codes, nil
}

func (s *RedisStore) readRecord(ctx context.Context, run pipelineFunc, code string) (*Record, error) {
	var (
		meta     *redis.StringCmd
		owner    *redis.StringCmd
		capacity *redis.StringCmd
		counter  *redis.StringCmd
		blocks   *redis.StringSliceCmd
	)

	_, err := run(ctx, func(pipe redis.Pipeliner) error {
		meta = pipe.LIndex(ctx, QueueKey(code), 0)
		owner = pipe.Get(ctx, OwnerKey(code))
		capacity = pipe.Get(ctx, CapacityKey(code))
		counter = pipe.Get(ctx, CounterKey(code))
		blocks = pipe.LRange(ctx, BlocksKey(code), 0, -1)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, s.ioErr(ctx, "read", err)
	}

	metaBytes, err := meta.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.ioErr(ctx, "read metadata", err)
	}

	rec := &Record{Code: code, Meta: metaBytes, OwnerID: owner.Val()}

	if rec.BlockCapacity, err = capacity.Int(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, s.ioErr(ctx, "read capacity", err)
	}
	if rec.BlockCounter, err = counter.Int64(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, s.ioErr(ctx, "read counter", err)
	}

	raw, err := blocks.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, s.ioErr(ctx, "read blocks", err)
	}
	rec.Blocks = make([][]byte, len(raw))
	for i, b := range raw {
		rec.Blocks[i] = []byte(b)
	}
	return rec, nil
}

func (s *RedisStore) ioErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return unavailable(op, err)
}

func toArgs(values [][]byte) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
