package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Read cache for hot documents. Keys are tracked per kind so the admin
// cache-clear endpoint can drop one kind without touching the others.
var (
	Cache           *ristretto.Cache
	BudgetCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	AccountCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	RateCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Budget cache functions
func SetBudgetCache(cacheKey string, value interface{}) {
	BudgetCacheKeys.Lock()
	BudgetCacheKeys.m[cacheKey] = struct{}{}
	BudgetCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelBudgetCache(cacheKey string) {
	BudgetCacheKeys.Lock()
	delete(BudgetCacheKeys.m, cacheKey)
	BudgetCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllBudgetCaches() {
	BudgetCacheKeys.Lock()
	for key := range BudgetCacheKeys.m {
		Cache.Del(key)
	}
	BudgetCacheKeys.m = make(map[string]struct{})
	BudgetCacheKeys.Unlock()
}

// Account cache functions
func SetAccountCache(cacheKey string, value interface{}) {
	AccountCacheKeys.Lock()
	AccountCacheKeys.m[cacheKey] = struct{}{}
	AccountCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelAccountCache(cacheKey string) {
	AccountCacheKeys.Lock()
	delete(AccountCacheKeys.m, cacheKey)
	AccountCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllAccountCaches() {
	AccountCacheKeys.Lock()
	for key := range AccountCacheKeys.m {
		Cache.Del(key)
	}
	AccountCacheKeys.m = make(map[string]struct{})
	AccountCacheKeys.Unlock()
}

// Exchange-rate cache functions
func SetRateCache(cacheKey string, value interface{}) {
	RateCacheKeys.Lock()
	RateCacheKeys.m[cacheKey] = struct{}{}
	RateCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelRateCache(cacheKey string) {
	RateCacheKeys.Lock()
	delete(RateCacheKeys.m, cacheKey)
	RateCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllRateCaches() {
	RateCacheKeys.Lock()
	for key := range RateCacheKeys.m {
		Cache.Del(key)
	}
	RateCacheKeys.m = make(map[string]struct{})
	RateCacheKeys.Unlock()
}
