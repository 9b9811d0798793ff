// Package redis provides a Redis persistence implementation storing one JSON document per
// record, with a set index per collection and hash indexes for unique emails.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pathway"

// Persistence implements the persistence layer on top of Redis.
type Persistence struct {
	client           redis.UniversalClient
	logger           *slog.Logger
	workflowRepo     *WorkflowRepository
	templateRepo     *TemplateRepository
	accountRepo      *AccountRepository
	notificationRepo *NotificationRepository
	userRepo         *UserRepository
}

// NewPersistence connects to the Redis server named by a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return NewPersistenceWithClient(client, logger), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(client redis.UniversalClient, logger *slog.Logger) *Persistence {
	return &Persistence{
		client:           client,
		logger:           logger,
		workflowRepo:     &WorkflowRepository{client: client, workflows: newStore[models.Workflow](client, "workflows")},
		templateRepo:     &TemplateRepository{templates: newStore[models.WorkflowTemplate](client, "templates")},
		accountRepo:      &AccountRepository{client: client, accounts: newStore[models.EmployeeAccount](client, "accounts")},
		notificationRepo: &NotificationRepository{notifications: newStore[models.Notification](client, "notifications")},
		userRepo:         &UserRepository{client: client, users: newStore[models.User](client, "users")},
	}
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository {
	return p.templateRepo
}

func (p *Persistence) AccountRepository() persistence.AccountRepository {
	return p.accountRepo
}

func (p *Persistence) NotificationRepository() persistence.NotificationRepository {
	return p.notificationRepo
}

func (p *Persistence) UserRepository() persistence.UserRepository {
	return p.userRepo
}

// store keeps documents at pathway:<name>:<id> and their ids in the set pathway:<name>.
type store[T any] struct {
	client redis.UniversalClient
	name   string
}

func newStore[T any](client redis.UniversalClient, name string) *store[T] {
	return &store[T]{client: client, name: name}
}

func (s *store[T]) indexKey() string {
	return keyPrefix + ":" + s.name
}

func (s *store[T]) key(id string) string {
	return s.indexKey() + ":" + id
}

func (s *store[T]) emailKey() string {
	return s.indexKey() + ":email"
}

// get returns nil, nil when the record does not exist.
func (s *store[T]) get(ctx context.Context, cmd redis.Cmdable, id string) (*T, error) {
	body, err := cmd.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s %s: %w", s.name, id, err)
	}

	var record T

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", s.name, id, err)
	}

	return &record, nil
}

func (s *store[T]) put(ctx context.Context, pipe redis.Pipeliner, id string, record *T) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", s.name, id, err)
	}

	pipe.Set(ctx, s.key(id), body, 0)
	pipe.SAdd(ctx, s.indexKey(), id)

	return nil
}

func (s *store[T]) save(ctx context.Context, id string, record *T) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return s.put(ctx, pipe, id, record)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", s.name, id, err)
	}

	return nil
}

func (s *store[T]) remove(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", s.name, id, err)
	}

	return nil
}

func (s *store[T]) all(ctx context.Context) ([]*T, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.name, err)
	}

	records := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.name, err)
	}

	for i, value := range values {
		body, ok := value.(string)
		if !ok {
			continue
		}

		var record T

		err := json.Unmarshal([]byte(body), &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s %s: %w", s.name, ids[i], err)
		}

		records = append(records, &record)
	}

	return records, nil
}
