package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/MSAbhishek22/chameleon-agent/internal/detection"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
	"github.com/MSAbhishek22/chameleon-agent/internal/persona"
)

// lockStripes sizes the fixed lock array. Distinct ids may share a stripe;
// that only costs contention, never correctness.
const lockStripes = 64

// RedisStore keeps sessions in Redis so engagements survive a process
// restart. Per-id writes are serialized through local striped locks, which
// is sufficient for a single API instance; multi-instance deployments
// should shard conversations by id at the load balancer.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	now    func() time.Time

	locks [lockStripes]sync.Mutex
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("engagement: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("chameleon.internal.engagement.sessions"),
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisStore) lock(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *RedisStore) load(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return newSession(id, s.now()), nil
		}
		return nil, fmt.Errorf("engagement: failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt record is repaired, not fatal: start the session over.
		return newSession(id, s.now()), nil
	}
	sess.repair(id, s.now())
	return &sess, nil
}

func (s *RedisStore) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("engagement: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("engagement: failed to persist session: %w", err)
	}
	return nil
}

// Advance implements Store.
func (s *RedisStore) Advance(ctx context.Context, id, message string, det detection.Result) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "engagement.advance_session")
	defer span.End()

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sess.advance(message, det, s.now())
	sess.Persona = persona.ForCategory(sess.Category).Name
	if err := s.save(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sess.clone(), nil
}

// SaveIntel implements Store.
func (s *RedisStore) SaveIntel(ctx context.Context, id string, rec intel.Record) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "engagement.save_intel")
	defer span.End()

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sess.Intel = sess.Intel.Merge(rec)
	if err := s.save(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sess.clone(), nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	ctx, span := s.tracer.Start(ctx, "engagement.get_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		span.RecordError(err)
		return nil, false, fmt.Errorf("engagement: failed to load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("engagement: failed to decode session: %w", err)
	}
	sess.repair(id, s.now())
	return &sess, true, nil
}
