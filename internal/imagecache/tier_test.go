// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package imagecache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/tally-sync/internal/adapter"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/internal/mock"
	"github.com/MKhiriev/tally-sync/internal/store"
	"github.com/MKhiriev/tally-sync/models"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("signed out")
	}
	return string(s), nil
}

type recordingObserver struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingObserver) OnEvict(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func (r *recordingObserver) evicted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// newTestTier — хелпер: Tier с моком адаптера и файловым хранилищем во временной директории
func newTestTier(t *testing.T, cfg Config, opts ...Option) (*Tier, *mock.MockServerAdapter, store.BlobStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockServerAdapter(ctrl)

	disk, err := store.NewFileBlobStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	tier, err := NewTier(cfg, disk, fetcher, staticTokens("tok"), opts...)
	require.NoError(t, err)

	return tier, fetcher, disk
}

func blob(key string, size int) models.ImageBlob {
	return models.ImageBlob{Key: key, Bytes: make([]byte, size), Cost: size}
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestTier_Get_DownloadsThenServesFromMemory(t *testing.T) {
	tier, fetcher, disk := newTestTier(t, Config{})
	ctx := context.Background()

	fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
		Return(models.SignedURL{URL: "https://cdn/v1"}, nil).Times(1)
	fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1").
		Return([]byte("jpeg"), nil).Times(1)

	data, ok := tier.Get(ctx, "v1")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg"), data)

	data, ok = tier.Get(ctx, "v1")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg"), data)
	assert.True(t, tier.Peek("v1"))

	onDisk, err := disk.Read(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), onDisk)
}

func TestTier_Get_PromotesFromDisk(t *testing.T) {
	tier, _, disk := newTestTier(t, Config{})
	ctx := context.Background()

	require.NoError(t, disk.Write(ctx, "v1", []byte("cached")))
	assert.False(t, tier.Peek("v1"))

	// мок без ожиданий: любой сетевой вызов провалит тест
	data, ok := tier.Get(ctx, "v1")
	require.True(t, ok)
	assert.Equal(t, []byte("cached"), data)
	assert.True(t, tier.Peek("v1"))
	assert.Equal(t, len("cached"), tier.ResidentCost())
}

func TestTier_Get_EmptyKey(t *testing.T) {
	tier, _, _ := newTestTier(t, Config{})

	data, ok := tier.Get(context.Background(), "")
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestTier_Get_DeduplicatesConcurrentFetches(t *testing.T) {
	tier, fetcher, _ := newTestTier(t, Config{})
	ctx := context.Background()

	release := make(chan struct{})
	var downloads atomic.Int32

	fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
		Return(models.SignedURL{URL: "https://cdn/v1"}, nil).Times(1)
	fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1").
		DoAndReturn(func(context.Context, string) ([]byte, error) {
			downloads.Add(1)
			<-release
			return []byte("jpeg"), nil
		}).Times(1)

	const callers = 10
	var (
		wg       sync.WaitGroup
		resolved atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if data, ok := tier.Get(ctx, "v1"); ok && string(data) == "jpeg" {
				resolved.Add(1)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), downloads.Load())
	assert.Equal(t, int32(callers), resolved.Load())
}

func TestTier_Get_RetriesWithFreshURL(t *testing.T) {
	tier, fetcher, _ := newTestTier(t, Config{})

	gomock.InOrder(
		fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
			Return(models.SignedURL{URL: "https://cdn/v1?sig=1"}, nil),
		fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1?sig=1").
			Return(nil, adapter.ErrEmptyBody),
		fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
			Return(models.SignedURL{URL: "https://cdn/v1?sig=2"}, nil),
		fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1?sig=2").
			Return([]byte("jpeg"), nil),
	)

	data, ok := tier.Get(context.Background(), "v1")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestTier_Get_GivesUpAfterTwoAttempts(t *testing.T) {
	m := metrics.NewCollector("test")
	tier, fetcher, disk := newTestTier(t, Config{}, WithMetrics(m))

	fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
		Return(models.SignedURL{URL: "https://cdn/v1"}, nil).Times(2)
	fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1").
		Return(nil, fmt.Errorf("request: %w", adapter.ErrNetwork)).Times(2)

	data, ok := tier.Get(context.Background(), "v1")
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.False(t, tier.Peek("v1"))

	_, err := disk.Read(context.Background(), "v1")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)
	// одна серия: только result="error"
	n, err := testutil.GatherAndCount(m.Registry(), "test_image_downloads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTier_Get_DiskReadErrorFallsThroughToNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockServerAdapter(ctrl)
	disk := mock.NewMockBlobStore(ctrl)

	tier, err := NewTier(Config{RetryBackoff: time.Millisecond}, disk, fetcher, staticTokens("tok"))
	require.NoError(t, err)

	// диск читается дважды: до flight и внутри него
	disk.EXPECT().Read(gomock.Any(), "v1").Return(nil, errors.New("input/output error")).Times(2)
	fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
		Return(models.SignedURL{URL: "https://cdn/v1"}, nil)
	fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1").
		Return([]byte("jpeg"), nil)
	disk.EXPECT().Write(gomock.Any(), "v1", []byte("jpeg")).Return(errors.New("disk full"))

	data, ok := tier.Get(context.Background(), "v1")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg"), data)
	assert.True(t, tier.Peek("v1"), "a failed disk write still admits to memory")
}

func TestTier_Get_NotFoundIsNotRetried(t *testing.T) {
	tier, fetcher, _ := newTestTier(t, Config{})

	fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
		Return(models.SignedURL{}, fmt.Errorf("image url: %w", adapter.ErrNotFound)).Times(1)

	_, ok := tier.Get(context.Background(), "v1")
	assert.False(t, ok)
}

func TestTier_Get_NoToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockServerAdapter(ctrl)
	disk, err := store.NewFileBlobStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	tier, err := NewTier(Config{}, disk, fetcher, staticTokens(""))
	require.NoError(t, err)

	_, ok := tier.Get(context.Background(), "v1")
	assert.False(t, ok)
}

func TestTier_Get_CallerCancelDoesNotAbortFlight(t *testing.T) {
	tier, fetcher, _ := newTestTier(t, Config{})

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", "v1").
		Return(models.SignedURL{URL: "https://cdn/v1"}, nil)
	fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/v1").
		DoAndReturn(func(ctx context.Context, _ string) ([]byte, error) {
			close(started)
			<-release
			defer close(finished)
			return []byte("jpeg"), ctx.Err()
		})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, ok := tier.Get(ctx, "v1")
	assert.False(t, ok, "cancelled caller returns without the image")

	close(release)
	<-finished

	assert.Eventually(t, func() bool { return tier.Peek("v1") }, time.Second, 5*time.Millisecond)
}

// ── memory bounds ────────────────────────────────────────────────────────────

func TestTier_EvictionBound(t *testing.T) {
	observer := &recordingObserver{}
	tier, _, _ := newTestTier(t, Config{MaxEntries: 100, MaxCost: 10}, WithObserver(observer))

	tier.admit("a", blob("a", 4).Bytes)
	tier.admit("b", blob("b", 4).Bytes)

	// "a" становится самым свежим
	_, ok := tier.memory.get("a")
	require.True(t, ok)

	tier.admit("c", blob("c", 4).Bytes)

	assert.LessOrEqual(t, tier.ResidentCost(), 10)
	assert.Equal(t, []string{"b"}, observer.evicted())
	assert.False(t, tier.Peek("b"))
	assert.True(t, tier.Peek("a"))
	assert.True(t, tier.Peek("c"))
	assert.Equal(t, []string{"a", "c"}, tier.ResidentKeys())
}

func TestTier_EvictionBound_Sequence(t *testing.T) {
	tier, _, _ := newTestTier(t, Config{MaxEntries: 100, MaxCost: 1000})

	for i := range 50 {
		key := fmt.Sprintf("k%d", i)
		tier.admit(key, make([]byte, 70+i))
		require.LessOrEqual(t, tier.ResidentCost(), 1000, "after admitting %s", key)
	}
	assert.True(t, tier.Peek("k49"))
	assert.False(t, tier.Peek("k0"))
}

func TestTier_EntryCap(t *testing.T) {
	observer := &recordingObserver{}
	tier, _, _ := newTestTier(t, Config{MaxEntries: 2, MaxCost: 1 << 20}, WithObserver(observer))

	tier.admit("a", []byte("1"))
	tier.admit("b", []byte("2"))
	tier.admit("c", []byte("3"))

	assert.Equal(t, 2, tier.Resident())
	assert.Equal(t, 2, tier.ResidentCost())
	assert.Equal(t, []string{"a"}, observer.evicted())
}

func TestTier_ReplaceKeepsCostAccurate(t *testing.T) {
	tier, _, _ := newTestTier(t, Config{MaxEntries: 10, MaxCost: 100})

	tier.admit("a", make([]byte, 30))
	tier.admit("a", make([]byte, 10))

	assert.Equal(t, 1, tier.Resident())
	assert.Equal(t, 10, tier.ResidentCost())
}

func TestTier_EvictionMetricCountsCapacityOnly(t *testing.T) {
	m := metrics.NewCollector("test")
	observer := &recordingObserver{}
	tier, _, _ := newTestTier(t, Config{MaxEntries: 2, MaxCost: 1 << 20}, WithMetrics(m), WithObserver(observer))
	ctx := context.Background()

	tier.admit("a", []byte("1"))
	tier.admit("b", []byte("2"))
	tier.admit("c", []byte("3")) // вытесняет "a"

	require.NoError(t, tier.Remove(ctx, "b"))
	require.NoError(t, tier.ClearAll(ctx))

	// наблюдатели узнают обо всех ключах, метрика считает только вытеснение
	assert.Equal(t, []string{"a", "b", "c"}, observer.evicted())

	expected := `
# HELP test_image_evictions_total Images evicted from the memory tier.
# TYPE test_image_evictions_total counter
test_image_evictions_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_image_evictions_total"))
}

func TestTier_OversizedBlobStaysOnDiskOnly(t *testing.T) {
	tier, _, disk := newTestTier(t, Config{MaxEntries: 10, MaxCost: 8})
	ctx := context.Background()

	require.NoError(t, disk.Write(ctx, "big", make([]byte, 64)))

	data, ok := tier.Get(ctx, "big")
	require.True(t, ok)
	assert.Len(t, data, 64)
	assert.False(t, tier.Peek("big"))
	assert.Zero(t, tier.ResidentCost())
}

func TestTier_ClearAll(t *testing.T) {
	observer := &recordingObserver{}
	tier, _, disk := newTestTier(t, Config{}, WithObserver(observer))
	ctx := context.Background()

	require.NoError(t, disk.Write(ctx, "a", []byte("1")))
	_, ok := tier.Get(ctx, "a")
	require.True(t, ok)

	require.NoError(t, tier.ClearAll(ctx))

	assert.Zero(t, tier.Resident())
	assert.Zero(t, tier.ResidentCost())
	assert.Equal(t, []string{"a"}, observer.evicted())

	_, err := disk.Read(ctx, "a")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)
}

func TestTier_Remove(t *testing.T) {
	tier, _, disk := newTestTier(t, Config{})
	ctx := context.Background()

	require.NoError(t, disk.Write(ctx, "a", []byte("1")))
	_, ok := tier.Get(ctx, "a")
	require.True(t, ok)

	require.NoError(t, tier.Remove(ctx, "a"))
	assert.False(t, tier.Peek("a"))
	_, err := disk.Read(ctx, "a")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)
}

func TestTier_Prefetch(t *testing.T) {
	tier, fetcher, _ := newTestTier(t, Config{})

	for _, key := range []string{"v1", "v2", "v3"} {
		fetcher.EXPECT().RequestImageURL(gomock.Any(), "tok", key).
			Return(models.SignedURL{URL: "https://cdn/" + key}, nil)
		fetcher.EXPECT().DownloadImage(gomock.Any(), "https://cdn/"+key).
			Return([]byte(key), nil)
	}

	tier.Prefetch(context.Background(), "v1", "v2", "v3")

	assert.Equal(t, 3, tier.Resident())
	for _, key := range []string{"v1", "v2", "v3"} {
		assert.True(t, tier.Peek(key))
	}
}

func TestEvictionObserverFunc(t *testing.T) {
	var got string
	var o EvictionObserver = EvictionObserverFunc(func(key string) { got = key })

	o.OnEvict("k")
	assert.Equal(t, "k", got)
}
