package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Typed хранит значения типа T в JSON поверх Cache.
// Все ключи получают общий префикс.
type Typed[T any] struct {
	cache  Cache
	prefix string
	ttl    time.Duration
}

// NewTyped создаёт типизированный кэш
func NewTyped[T any](c Cache, prefix string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{cache: c, prefix: prefix, ttl: ttl}
}

// Key возвращает полный ключ с префиксом
func (t *Typed[T]) Key(key string) string {
	return t.prefix + key
}

// Get возвращает значение. Отсутствие ключа не является ошибкой.
// Повреждённая запись удаляется и считается промахом.
func (t *Typed[T]) Get(ctx context.Context, key string) (*T, bool, error) {
	full := t.Key(key)

	data, err := t.cache.Get(ctx, full)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		_ = t.cache.Delete(ctx, full) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &value, true, nil
}

// Set сохраняет значение
func (t *Typed[T]) Set(ctx context.Context, key string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return t.cache.Set(ctx, t.Key(key), data, t.ttl)
}

// Invalidate удаляет ключи по паттерну внутри префикса
func (t *Typed[T]) Invalidate(ctx context.Context, pattern string) (int64, error) {
	return t.cache.DeleteByPattern(ctx, t.Key(pattern))
}
