package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/gateway/gatewaytest"
	"github.com/m3rciful/cinebot/internal/store/storetest"
)

func newService(t *testing.T) (*catalog.Service, *gatewaytest.Fake) {
	t.Helper()
	gw := gatewaytest.New()
	return catalog.NewService(storetest.New(t), gw), gw
}

func item(code string) domain.Item {
	return domain.Item{
		Code:        code,
		Description: "Line one\nmore",
		Payload:     domain.Media{Kind: domain.MediaVideo, FileID: "file-" + code},
		UploaderID:  42,
	}
}

func TestValidateCode(t *testing.T) {
	for in, want := range map[string]string{" abc1 ": "ABC1", "zz9": "ZZ9"} {
		got, err := catalog.ValidateCode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", "ab", "abc-1", "кино1", "A234567890123456789012345678901234"} {
		_, err := catalog.ValidateCode(bad)
		assert.True(t, domain.IsKind(err, domain.KindValidation), bad)
	}
}

func TestAddThenFindIsCanonical(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	ok, err := svc.AddItem(ctx, item("abc1"))
	require.NoError(t, err)
	require.True(t, ok)

	it, found, err := svc.FindByCode(ctx, "AbC1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ABC1", it.Code)
	assert.Equal(t, "Line one", it.Title)

	_, found, err = svc.FindByCode(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDuplicateIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.AddItem(ctx, item("abc1"))
	require.NoError(t, err)

	ok, err := svc.AddItem(ctx, item("ABC1"))
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentViews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.AddItem(ctx, item("hot1"))
	require.NoError(t, err)
	require.NoError(t, svc.IncrementViews(ctx, "hot1"))

	const n = 16
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.IncrementViews(ctx, "HOT1")
		}()
	}
	wg.Wait()

	it, _, err := svc.FindByCode(ctx, "hot1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, it.Views, int64(2))
	assert.LessOrEqual(t, it.Views, int64(1+n))

	err = svc.IncrementViews(ctx, "none")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestTopByViewsTiesByRecency(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	views := map[string]int{"AAA": 2, "BBB": 2, "CCC": 7, "DDD": 0, "EEE": 1, "FFF": 1}
	for i, code := range []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"} {
		it := item(code)
		it.UploadedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := svc.AddItem(ctx, it)
		require.NoError(t, err)
		for range views[code] {
			require.NoError(t, svc.IncrementViews(ctx, code))
		}
	}

	top, err := svc.TopByViews(ctx, 5, 0)
	require.NoError(t, err)
	var got []string
	for _, it := range top {
		got = append(got, it.Code)
	}
	assert.Equal(t, []string{"CCC", "BBB", "AAA", "FFF", "EEE"}, got)

	p, err := svc.Page(ctx, catalog.ByViews, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Pages)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
	require.Len(t, p.Items, 1)
	assert.Equal(t, "DDD", p.Items[0].Code)

	p, err = svc.Page(ctx, catalog.ByRecency, 9, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Number)
	assert.Equal(t, "BBB", p.Items[0].Code)
}

func TestDeleteRetractsPost(t *testing.T) {
	ctx := context.Background()
	svc, gw := newService(t)
	_, err := svc.AddItem(ctx, item("del1"))
	require.NoError(t, err)
	ref := domain.MessageRef{ChatID: -100, MessageID: 9}
	require.NoError(t, svc.AttachDistribution(ctx, "del1", ref))

	it, err := svc.DeleteByCode(ctx, "DEL1")
	require.NoError(t, err)
	assert.Equal(t, "DEL1", it.Code)
	assert.Equal(t, []domain.MessageRef{ref}, gw.Deleted())

	_, err = svc.DeleteByCode(ctx, "DEL1")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDeleteSurvivesRetractFailure(t *testing.T) {
	ctx := context.Background()
	svc, gw := newService(t)
	gw.FailDelete = gatewaytest.ErrBlocked
	_, err := svc.AddItem(ctx, item("del2"))
	require.NoError(t, err)
	require.NoError(t, svc.AttachDistribution(ctx, "del2", domain.MessageRef{ChatID: -1, MessageID: 1}))

	_, err = svc.DeleteByCode(ctx, "del2")
	require.NoError(t, err)
	_, found, err := svc.FindByCode(ctx, "del2")
	require.NoError(t, err)
	assert.False(t, found)
}
