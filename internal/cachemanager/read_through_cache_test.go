package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type loadInput struct {
	Path string
}

// countingFn returns an info whose NTrials is the number of calls so far.
func countingFn(calls *int, err error) func(context.Context, loadInput) (exampleInfo, error) {
	return func(_ context.Context, in loadInput) (exampleInfo, error) {
		*calls++
		if err != nil {
			return exampleInfo{}, err
		}
		return exampleInfo{Subject: in.Path, NTrials: *calls}, nil
	}
}

func newCache() *InMemoryCacheManager[infoKey, exampleInfo] {
	return NewInMemoryCacheManager[infoKey, exampleInfo]("info", DefaultExpiration, DefaultCleanupInterval)
}

func TestReadThroughCache_Get_CachesResult(t *testing.T) {
	var calls int
	rtc := NewReadThroughCache[infoKey, exampleInfo, loadInput](newCache(), countingFn(&calls, nil), false)

	first, err := rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	require.NoError(t, err)
	second, err := rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	var calls int
	cache := newCache()
	rtc := NewReadThroughCache[infoKey, exampleInfo, loadInput](cache, countingFn(&calls, nil), true)

	_, _ = rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	got, err := rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)

	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 2, got.NTrials)
	require.Zero(t, cache.Len())
}

func TestReadThroughCache_Get_ErrorIsNotCached(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	cache := newCache()
	rtc := NewReadThroughCache[infoKey, exampleInfo, loadInput](cache, countingFn(&calls, boom), false)

	_, err := rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)

	require.ErrorIs(t, err, boom)
	require.Zero(t, cache.Len())
}

func TestReadThroughCache_Refresh_Replaces(t *testing.T) {
	var calls int
	rtc := NewReadThroughCache[infoKey, exampleInfo, loadInput](newCache(), countingFn(&calls, nil), false)

	_, _ = rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	refreshed, err := rtc.Refresh(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	require.NoError(t, err)
	cached, err := rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	require.NoError(t, err)

	require.Equal(t, 2, calls)
	require.Equal(t, 2, refreshed.NTrials)
	require.Equal(t, refreshed, cached)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	var calls int
	rtc := NewReadThroughCache[infoKey, exampleInfo, loadInput](newCache(), countingFn(&calls, nil), false)

	_, _ = rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)
	rtc.Invalidate(context.Background(), "a")
	_, _ = rtc.Get(context.Background(), "a", loadInput{Path: "a"}, time.Minute)

	require.Equal(t, 2, calls)
}
