package cache

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/workouts"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte     = 1024 * 1024
	weekPlanKey  = "week-plan"
	minCacheSize = 512 * 1024
)

var _ workouts.TemplateRepository = (*TemplateCache)(nil)

// TemplateCache is a read-through cache in front of a TemplateRepository.
// The week plan is stored encoded and dropped on every edit made through the cache.
type TemplateCache struct {
	repo  workouts.TemplateRepository
	cache *freecache.Cache
	ttl   time.Duration
}

func NewTemplateCache(repo workouts.TemplateRepository, cacheSizeMegabytes int, ttl time.Duration) *TemplateCache {
	cacheSize := max(cacheSizeMegabytes*megabyte, minCacheSize)
	return &TemplateCache{
		repo:  repo,
		cache: freecache.NewCache(cacheSize),
		ttl:   ttl,
	}
}

func (c *TemplateCache) GetWeekPlan(ctx context.Context) (workouts.WeekPlan, error) {
	if planBytes, err := c.cache.Get([]byte(weekPlanKey)); err == nil {
		plan, err := workouts.DecodeWeekPlan(planBytes)
		if err == nil {
			log.Trace("week plan served from cache")
			return plan, nil
		}
		log.Errorf("failed to decode cached week plan: %s", err)
	}

	plan, err := c.repo.GetWeekPlan(ctx)
	if err != nil {
		return nil, err
	}

	planBytes, err := workouts.EncodeWeekPlan(plan)
	if err != nil {
		log.Errorf("failed to encode week plan for cache: %s", err)
		return plan, nil
	}
	if err := c.cache.Set([]byte(weekPlanKey), planBytes, int(c.ttl.Seconds())); err != nil {
		log.Errorf("failed to write week plan cache: %s", err)
	}

	return plan, nil
}

func (c *TemplateCache) AddExercise(ctx context.Context, slot workouts.WeekdaySlot, exercise workouts.TemplateExercise) error {
	defer c.invalidate()
	return c.repo.AddExercise(ctx, slot, exercise)
}

func (c *TemplateCache) UpdateExercise(ctx context.Context, slot workouts.WeekdaySlot, exercise workouts.TemplateExercise) error {
	defer c.invalidate()
	return c.repo.UpdateExercise(ctx, slot, exercise)
}

func (c *TemplateCache) RemoveExercise(ctx context.Context, slot workouts.WeekdaySlot, id string) error {
	defer c.invalidate()
	return c.repo.RemoveExercise(ctx, slot, id)
}

func (c *TemplateCache) invalidate() {
	c.cache.Del([]byte(weekPlanKey))
}
