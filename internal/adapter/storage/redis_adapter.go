package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

const (
	colorKeyPrefix = "color:"
	colorIndexKey  = "colors"

	fieldID          = "id"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldQuantity    = "quantity"
	fieldPictureURL  = "picture_url"
)

// Scripts run atomically on the server, so the read-check-write below has no
// observable intermediate state. Amounts stay strings: Lua numbers are doubles
// and lose precision above 2^53. Both sides of the guard are canonical
// non-negative integers, so comparing length then text is exact.
var decrementQuantityScript = redis.NewScript(`
local key = KEYS[1]
local amount = ARGV[1]

local current = redis.call('HGET', key, 'quantity')
if not current then
	return 0
end

if #current < #amount or (#current == #amount and current < amount) then
	return 0
end

redis.call('HINCRBY', key, 'quantity', '-' .. amount)
return 1
`)

// HINCRBY alone would create a missing hash, so existence is checked first.
// An overflowing HINCRBY leaves the field untouched and is reported as -1.
var incrementQuantityScript = redis.NewScript(`
local key = KEYS[1]

if redis.call('EXISTS', key) == 0 then
	return 0
end

local res = redis.pcall('HINCRBY', key, 'quantity', ARGV[1])
if type(res) == 'table' and res.err then
	return -1
end
return 1
`)

const incrementOverflow = -1

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func colorKey(id string) string {
	return colorKeyPrefix + id
}

func (r *RedisAdapter) Get(ctx context.Context, id string) (domain.Item, error) {
	fields, err := r.client.HGetAll(ctx, colorKey(id)).Result()
	if err != nil {
		return domain.Item{}, fmt.Errorf("hgetall color: %w", err)
	}
	if len(fields) == 0 {
		return domain.Item{}, domain.ErrNotFound
	}
	return itemFromHash(fields)
}

func (r *RedisAdapter) List(ctx context.Context) ([]domain.Item, error) {
	ids, err := r.client.SMembers(ctx, colorIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers colors: %w", err)
	}

	items := make([]domain.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, colorKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("hgetall colors: %w", err)
	}

	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		item, err := itemFromHash(fields)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *RedisAdapter) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	if err := in.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := in.WithID(domain.NewItemID())
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, colorKey(item.ID),
			fieldID, item.ID,
			fieldDescription, item.Description,
			fieldPrice, item.Price,
			fieldQuantity, item.Quantity,
			fieldPictureURL, item.PictureURL,
		)
		pipe.SAdd(ctx, colorIndexKey, item.ID)
		return nil
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("store color: %w", err)
	}
	return item, nil
}

func (r *RedisAdapter) ConditionalDecrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReserveAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	result, err := decrementQuantityScript.Run(ctx, r.client, []string{colorKey(id)}, amount).Int64()
	if err != nil {
		return domain.NotApplied, fmt.Errorf("decrement quantity: %w", err)
	}
	return domain.OutcomeOf(result), nil
}

func (r *RedisAdapter) UnconditionalIncrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReleaseAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	result, err := incrementQuantityScript.Run(ctx, r.client, []string{colorKey(id)}, amount).Int64()
	if err != nil {
		return domain.NotApplied, fmt.Errorf("increment quantity: %w", err)
	}
	if result == incrementOverflow {
		return domain.NotApplied, domain.QuantityOverflow(amount)
	}
	return domain.OutcomeOf(result), nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func itemFromHash(fields map[string]string) (domain.Item, error) {
	price, err := strconv.ParseInt(fields[fieldPrice], 10, 64)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse price of %s: %w", fields[fieldID], err)
	}
	quantity, err := strconv.ParseInt(fields[fieldQuantity], 10, 64)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse quantity of %s: %w", fields[fieldID], err)
	}
	if fields[fieldID] == "" {
		return domain.Item{}, errors.New("color hash without id")
	}

	return domain.Item{
		ID:          fields[fieldID],
		Description: fields[fieldDescription],
		Price:       price,
		Quantity:    quantity,
		PictureURL:  fields[fieldPictureURL],
	}, nil
}
