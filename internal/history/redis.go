package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/JaimeStill/attest/pkg/pagination"
)

// appendScript stores the record and pushes its id in one atomic step,
// refusing to overwrite an existing id.
var appendScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("LPUSH", KEYS[2], ARGV[2])
return 1
`)

type redisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis returns a Store that keeps each record as JSON under
// "<prefix>:verification:<id>" and the newest-first id list under
// "<prefix>:verifications".
func NewRedis(client *redis.Client, prefix string, logger *slog.Logger) Store {
	return &redisStore{
		client: client,
		prefix: prefix,
		logger: logger.With("system", "history", "backend", BackendRedis),
	}
}

func (s *redisStore) recordKey(id string) string {
	return s.prefix + ":verification:" + id
}

func (s *redisStore) listKey() string {
	return s.prefix + ":verifications"
}

func (s *redisStore) Append(ctx context.Context, r Record) error {
	data, err := json.Marshal(r.Clone())
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	added, err := appendScript.Run(ctx, s.client, []string{s.recordKey(r.ID), s.listKey()}, data, r.ID).Int()
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	if added == 0 {
		return ErrDuplicate
	}

	s.logger.Debug("record appended", "id", r.ID)
	return nil
}

func (s *redisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.logger.Warn("indexed record missing", "id", ids[i])
			continue
		}

		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", ids[i], err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *redisStore) Find(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &r, nil
}

// Search filters client-side; redis keeps no secondary indexes for records.
func (s *redisStore) Search(ctx context.Context, f Filter, page pagination.PageRequest) (pagination.PageResult[Record], error) {
	all, err := s.List(ctx)
	if err != nil {
		return pagination.PageResult[Record]{}, err
	}
	return pagination.Slice(filterRecords(all, f), page), nil
}
