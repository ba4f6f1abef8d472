package model

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheThreshold caps the number of memoized results held in RAM, matching
// the item ceiling the service has always run with.
const cacheThreshold = 1000

var memo *lru.Cache[string, any]

func init() {
	var err error
	memo, err = lru.New[string, any](cacheThreshold)
	if err != nil {
		panic(err)
	}
}

func memoKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// cached memoizes successful loads under key. Failed loads are not stored
// so transient file problems do not stick.
func cached[T any](key string, load func() (T, error)) (T, error) {
	if v, ok := memo.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := load()
	if err == nil {
		memo.Add(key, t)
	}
	return t, err
}

// ResetCache drops all memoized entries. Used by the color reshuffle
// endpoint and tests.
func ResetCache() {
	memo.Purge()
}
