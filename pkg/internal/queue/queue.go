package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const DefaultKey = "hostel:notifications"

type Job struct {
	ID       string         `json:"id"`
	Mail     mailer.Message `json:"mail"`
	QueuedAt time.Time      `json:"queued_at"`
}

// Queue is a FIFO of mail jobs kept in a redis list.
// Producers LPUSH and the worker BRPOPs, so the oldest job is delivered first.
type Queue struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, key string) *Queue {
	if len(key) == 0 {
		key = DefaultKey
	}
	return &Queue{rdb: rdb, key: key}
}

func NewRedisFromSettings() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})
}

// Dispatch enqueues a mail and returns once it is stored, delivery happens in the worker.
func (v *Queue) Dispatch(ctx context.Context, msg mailer.Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	job := Job{
		ID:       uuid.NewString(),
		Mail:     msg,
		QueuedAt: time.Now(),
	}
	raw, err := jsoniter.Marshal(job)
	if err != nil {
		return fmt.Errorf("unable to encode notification job: %v", err)
	}
	if err := v.rdb.LPush(ctx, v.key, raw).Err(); err != nil {
		return fmt.Errorf("unable to enqueue notification job: %v", err)
	}

	log.Debug().Str("job", job.ID).Int("recipients", len(msg.To)).Msg("Notification job queued...")
	return nil
}

// Pop waits up to timeout for the next job, nil means the queue stayed empty.
func (v *Queue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := v.rdb.BRPop(ctx, timeout, v.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	// BRPOP answers with the key followed by the value
	var job Job
	if err := jsoniter.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unable to decode notification job: %v", err)
	}
	return &job, nil
}

func (v *Queue) Len(ctx context.Context) (int64, error) {
	return v.rdb.LLen(ctx, v.key).Result()
}
