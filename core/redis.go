package core

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"review-ledger/config"
	"review-ledger/model"
)

const Separator = ":"

type Redis struct {
	Prefix string
	Client *redis.Client

	ctx context.Context
}

func NewRedis(cfg *config.Redis) *Redis {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:     *cfg.Url,
		Password: *cfg.Password,
		DB:       *cfg.Database,
		PoolSize: *cfg.PoolSize,
	})

	return &Redis{
		Prefix: *cfg.Prefix,
		Client: client,

		ctx: ctx,
	}
}

func (r *Redis) Close() {
	r.Client.Close()
}

func (r *Redis) pendingKey() string {
	return r.Prefix + Separator + "pending"
}

// AppendPending mirrors a buffered review.
func (r *Redis) AppendPending(ctx context.Context, review *model.Review) error {
	data, err := json.Marshal(review)
	if err != nil {
		return err
	}
	return r.Client.RPush(ctx, r.pendingKey(), data).Err()
}

// ClearPending drops the mirror after its batch was sealed into a block.
func (r *Redis) ClearPending(ctx context.Context) error {
	return r.Client.Del(ctx, r.pendingKey()).Err()
}

// PendingReviews 读取待处理评审
func (r *Redis) PendingReviews(ctx context.Context) ([]*model.Review, error) {
	items, err := r.Client.LRange(ctx, r.pendingKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	reviews := make([]*model.Review, 0, len(items))
	for _, item := range items {
		var review model.Review
		if err := json.Unmarshal([]byte(item), &review); err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	return reviews, nil
}
