package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"discord-quote-importer/internal/domain"
)

// CacheItem представляет итог уже выполненного импорта
type CacheItem struct {
	Summary   domain.ImportSummary
	ExpiresAt time.Time
}

// CacheStore хранит итоги завершенных импортов по хешу полезной нагрузки.
// Повторная загрузка байт-в-байт того же экспорта не запускает второй
// импорт, а возвращает сохраненный итог.
type CacheStore struct {
	cache map[string]*CacheItem
	mutex sync.RWMutex
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore() *CacheStore {
	return &CacheStore{
		cache: make(map[string]*CacheItem),
	}
}

// Get извлекает кэшированный элемент по его ключу (хешу)
func (cs *CacheStore) Get(key string) (*CacheItem, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		// Элемент не существует или срок его действия истек
		return nil, false
	}

	return item, true
}

// Put сохраняет итог импорта в кэш с указанным сроком действия
func (cs *CacheStore) Put(key string, summary domain.ImportSummary, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	cs.cache[key] = &CacheItem{
		Summary:   summary,
		ExpiresAt: now.Add(ttl),
	}
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore) CleanupExpired() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func (cs *CacheStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// CalculateHash вычисляет хеш SHA256 полезной нагрузки экспорта
func CalculateHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
