package paper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/pkg/arxiv"
)

// paperCacheTTL keeps parsed papers around for a day; arXiv papers are
// immutable per version so this is purely about memory pressure.
const paperCacheTTL = 24 * time.Hour

// Cache stores parsed papers by arXiv id. A nil redis client disables it.
type Cache struct {
	redis *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{redis: client}
}

func cacheKey(arxivID string) string {
	return fmt.Sprintf("paper:arxiv:%s", arxivID)
}

func (c *Cache) Get(ctx context.Context, arxivID string) *arxiv.Paper {
	if c.redis == nil {
		return nil
	}

	data, err := c.redis.Get(ctx, cacheKey(arxivID)).Bytes()
	if err != nil {
		return nil
	}

	var p arxiv.Paper
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("arxiv_id", arxivID).Msg("discarding corrupt paper cache entry")
		c.redis.Del(ctx, cacheKey(arxivID))
		return nil
	}
	return &p
}

func (c *Cache) Set(ctx context.Context, p *arxiv.Paper) {
	if c.redis == nil || p == nil {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(p.ArxivID), data, paperCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("arxiv_id", p.ArxivID).Msg("failed to cache parsed paper")
	}
}
