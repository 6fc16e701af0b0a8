package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

const (
	entityPerson    = "person"
	entitySchool    = "school"
	entityWork      = "work"
	entityQuotation = "quotation"
)

func docKey(entity string, id int64) string {
	return fmt.Sprintf("catalog:%s:%d", entity, id)
}

func indexKey(entity string) string {
	return "catalog:" + entity + ":ids"
}

func seqKey(entity string) string {
	return "catalog:seq:" + entity
}

func personSchoolsKey(personID int64) string {
	return fmt.Sprintf("catalog:person:%d:schools", personID)
}

func schoolPeopleKey(schoolID int64) string {
	return fmt.Sprintf("catalog:school:%d:people", schoolID)
}

func personWorksKey(personID int64) string {
	return fmt.Sprintf("catalog:person:%d:works", personID)
}

func personQuotationsKey(personID int64) string {
	return fmt.Sprintf("catalog:person:%d:quotations", personID)
}

func externalIDKey(entity, externalID string) string {
	return "catalog:" + entity + ":ext:" + externalID
}

func schoolNameKey(name string) string {
	return "catalog:school:name:" + classifier.SearchKey(name)
}

// getDoc loads one JSON document, mapping a missing key to ErrNotFound.
func getDoc[T any](ctx context.Context, client redis.Cmdable, entity string, id int64) (*T, error) {
	raw, err := client.Get(ctx, docKey(entity, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %d: %w", entity, id, err)
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", entity, id, err)
	}
	return &doc, nil
}

// getDocs loads the documents for ids in order, skipping ids whose key vanished.
func getDocs[T any](ctx context.Context, client redis.Cmdable, entity string, ids []int64) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(entity, id)
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s documents: %w", entity, err)
	}

	docs := make([]T, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var doc T
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s %d: %w", entity, ids[i], err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// allDocs loads every document of an entity in id order.
func allDocs[T any](ctx context.Context, client redis.Cmdable, entity string) ([]T, error) {
	members, err := client.ZRange(ctx, indexKey(entity), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s index: %w", entity, err)
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, err
	}
	return getDocs[T](ctx, client, entity, ids)
}

// setIDs reads a relation set as sorted ids.
func setIDs(ctx context.Context, client redis.Cmdable, key string) ([]int64, error) {
	members, err := client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func parseIDs(members []string) ([]int64, error) {
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt id %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func exists(ctx context.Context, client redis.Cmdable, key string) (bool, error) {
	n, err := client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// lookupID reads a pointer key holding an id; zero means absent.
func lookupID(ctx context.Context, client redis.Cmdable, key string) (int64, error) {
	id, err := client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return id, err
}

// page filters, sorts, and slices items the same way the relational store does.
func page[T any](items []T, params database.ListParams, id func(*T) int64, name func(*T) string, keep func(*T) bool) ([]T, int64) {
	needle := params.SearchPattern()

	matched := make([]T, 0, len(items))
	for i := range items {
		item := &items[i]
		if keep != nil && !keep(item) {
			continue
		}
		if needle != "" && !strings.Contains(classifier.SearchKey(name(item)), needle) {
			continue
		}
		matched = append(matched, *item)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &matched[i], &matched[j]
		switch params.Sort {
		case database.SortIDDesc:
			return id(a) > id(b)
		case database.SortNameAsc:
			if name(a) != name(b) {
				return name(a) < name(b)
			}
		case database.SortNameDesc:
			if name(a) != name(b) {
				return name(a) > name(b)
			}
		}
		return id(a) < id(b)
	})

	total := int64(len(matched))
	if params.Offset >= len(matched) {
		return []T{}, total
	}
	end := params.Offset + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], total
}
