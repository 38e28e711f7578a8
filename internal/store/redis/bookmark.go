package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/store"
)

// categoryMeta is the JSON stored under CategoryKey.
type categoryMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SaveCategories replaces the stored snapshot with cats in one MULTI/EXEC.
// Categories that are no longer present are removed.
func (s *Store) SaveCategories(ctx context.Context, cats []engine.CategoryData) error {
	previous, err := s.client.SMembers(ctx, AllCategoriesKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get category IDs: %w", err)
	}

	type encoded struct {
		meta    []byte
		records []any
	}
	payload := make([]encoded, len(cats))
	keep := make(map[string]struct{}, len(cats))

	for ci, c := range cats {
		meta, err := json.Marshal(categoryMeta{ID: c.ID, Name: c.Name})
		if err != nil {
			return fmt.Errorf("failed to marshal category %s: %w", c.ID, err)
		}
		records := make([]any, 0, len(c.Bookmarks))
		for bi, b := range c.Bookmarks {
			data, err := store.EncodeBookmark(ci, bi, b)
			if err != nil {
				return err
			}
			records = append(records, data)
		}
		payload[ci] = encoded{meta: meta, records: records}
		keep[c.ID] = struct{}{}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range previous {
			if _, ok := keep[id]; ok {
				continue
			}
			pipe.Del(ctx, CategoryKey(id), CategoryBookmarksKey(id))
			pipe.SRem(ctx, AllCategoriesKey(), id)
		}

		pipe.Del(ctx, CategoryOrderKey())
		for ci, c := range cats {
			pipe.Set(ctx, CategoryKey(c.ID), payload[ci].meta, 0)
			pipe.Del(ctx, CategoryBookmarksKey(c.ID))
			if len(payload[ci].records) > 0 {
				pipe.RPush(ctx, CategoryBookmarksKey(c.ID), payload[ci].records...)
			}
			pipe.SAdd(ctx, AllCategoriesKey(), c.ID)
			pipe.RPush(ctx, CategoryOrderKey(), c.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}

	return nil
}

// LoadCategories reads the snapshot back in saved order. Categories whose
// metadata has vanished are skipped.
func (s *Store) LoadCategories(ctx context.Context) ([]engine.CategoryData, error) {
	ids, err := s.client.LRange(ctx, CategoryOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get category order: %w", err)
	}

	if len(ids) == 0 {
		return []engine.CategoryData{}, nil
	}

	pipe := s.client.Pipeline()
	metas := make([]*redis.StringCmd, len(ids))
	lists := make([]*redis.StringSliceCmd, len(ids))
	for i, id := range ids {
		metas[i] = pipe.Get(ctx, CategoryKey(id))
		lists[i] = pipe.LRange(ctx, CategoryBookmarksKey(id), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	cats := make([]engine.CategoryData, 0, len(ids))
	for i, id := range ids {
		raw, err := metas[i].Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get category %s: %w", id, err)
		}

		var meta categoryMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category %s: %w", id, err)
		}

		records, err := lists[i].Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to get bookmarks of %s: %w", id, err)
		}

		c := engine.CategoryData{ID: meta.ID, Name: meta.Name}
		for _, rec := range records {
			b, err := store.DecodeBookmark([]byte(rec))
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", id, err)
			}
			c.Bookmarks = append(c.Bookmarks, b)
		}
		cats = append(cats, c)
	}

	return cats, nil
}

// Ping reports whether the backing Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
