// README: Driver pools: Redis hash + availability set, and a seeded in-memory pool.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"privatehire/internal/types"
)

const (
	driversKey   = "fleet:drivers"
	availableKey = "fleet:drivers:available"
	onTripKey    = "fleet:drivers:on_trip"
)

// freeScript adds a known driver to the available set unless a trip holds it.
var freeScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then return -1 end
if redis.call('SISMEMBER', KEYS[3], ARGV[1]) == 1 then return 0 end
redis.call('SADD', KEYS[2], ARGV[1])
return 1
`)

type RedisDriverPool struct {
	redis *redis.Client
}

func NewRedisDriverPool(redis *redis.Client) *RedisDriverPool {
	return &RedisDriverPool{redis: redis}
}

// Register stores the driver profile and sets its availability.
func (p *RedisDriverPool) Register(ctx context.Context, d Driver, available bool) error {
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	pipe := p.redis.TxPipeline()
	pipe.HSet(ctx, driversKey, string(d.ID), body)
	pipe.SRem(ctx, onTripKey, string(d.ID))
	if available {
		pipe.SAdd(ctx, availableKey, string(d.ID))
	} else {
		pipe.SRem(ctx, availableKey, string(d.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Seed registers d as available only if it is not already known, so a restart does not
// free drivers that are still on a trip.
func (p *RedisDriverPool) Seed(ctx context.Context, d Driver) error {
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	added, err := p.redis.HSetNX(ctx, driversKey, string(d.ID), body).Result()
	if err != nil {
		return err
	}
	if !added {
		return nil
	}
	return p.redis.SAdd(ctx, availableKey, string(d.ID)).Err()
}

func (p *RedisDriverPool) Available(ctx context.Context) ([]Driver, error) {
	ids, err := p.redis.SMembers(ctx, availableKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := p.redis.HMGet(ctx, driversKey, ids...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Driver, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			// availability set references a driver without a profile
			continue
		}
		var d Driver
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("decode driver %s: %w", ids[i], err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *RedisDriverPool) Reserve(ctx context.Context, id types.ID) (bool, error) {
	return p.redis.SMove(ctx, availableKey, onTripKey, string(id)).Result()
}

func (p *RedisDriverPool) Release(ctx context.Context, id types.ID) error {
	exists, err := p.redis.HExists(ctx, driversKey, string(id)).Result()
	if err != nil {
		return err
	}
	if !exists {
		return ErrDriverNotFound
	}
	pipe := p.redis.TxPipeline()
	pipe.SRem(ctx, onTripKey, string(id))
	pipe.SAdd(ctx, availableKey, string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (p *RedisDriverPool) SetAvailability(ctx context.Context, id types.ID, available bool) error {
	if !available {
		exists, err := p.redis.HExists(ctx, driversKey, string(id)).Result()
		if err != nil {
			return err
		}
		if !exists {
			return ErrDriverNotFound
		}
		return p.redis.SRem(ctx, availableKey, string(id)).Err()
	}
	res, err := freeScript.Run(ctx, p.redis, []string{driversKey, availableKey, onTripKey}, string(id)).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return ErrDriverNotFound
	case 0:
		return ErrDriverOnTrip
	}
	return nil
}

// StaticDriverPool keeps drivers in memory.
type StaticDriverPool struct {
	mu        sync.Mutex
	drivers   map[types.ID]Driver
	available map[types.ID]bool
	held      map[types.ID]bool
}

func NewStaticDriverPool(drivers ...Driver) *StaticDriverPool {
	p := &StaticDriverPool{
		drivers:   make(map[types.ID]Driver, len(drivers)),
		available: make(map[types.ID]bool, len(drivers)),
		held:      make(map[types.ID]bool),
	}
	for _, d := range drivers {
		p.drivers[d.ID] = d
		p.available[d.ID] = true
	}
	return p
}

func (p *StaticDriverPool) Available(_ context.Context) ([]Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Driver, 0, len(p.drivers))
	for id, d := range p.drivers {
		if p.available[id] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (p *StaticDriverPool) Reserve(_ context.Context, id types.ID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.available[id] {
		return false, nil
	}
	p.available[id] = false
	p.held[id] = true
	return true, nil
}

func (p *StaticDriverPool) Release(_ context.Context, id types.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.drivers[id]; !ok {
		return ErrDriverNotFound
	}
	delete(p.held, id)
	p.available[id] = true
	return nil
}

func (p *StaticDriverPool) SetAvailability(_ context.Context, id types.ID, available bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.drivers[id]; !ok {
		return ErrDriverNotFound
	}
	if available && p.held[id] {
		return ErrDriverOnTrip
	}
	p.available[id] = available
	return nil
}

// DefaultDrivers seeds local runs and the Redis pool on first start.
func DefaultDrivers() []Driver {
	return []Driver{
		{ID: "drv-james", Name: "James Sterling", Rating: 4.9, Plate: "LX21 JSR"},
		{ID: "drv-mohammed", Name: "Mohammed Rahman", Rating: 4.8, Plate: "LB70 MRH"},
		{ID: "drv-olivia", Name: "Olivia Bennett", Rating: 4.9, Plate: "LC22 OBN"},
		{ID: "drv-tomasz", Name: "Tomasz Nowak", Rating: 4.7, Plate: "LD19 TNW"},
	}
}
