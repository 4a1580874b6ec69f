package trending

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	"github.com/yungbote/shelfmind-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
)

func TestRank(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	d := uuid.MustParse("00000000-0000-0000-0000-00000000000d")

	cases := []struct {
		name string
		in   []repos.BookActivity
		topN int
		want []uuid.UUID
	}{
		{
			name: "completions weigh double",
			in: []repos.BookActivity{
				{BookID: a, Starts: 3},
				{BookID: b, Completions: 2},
			},
			want: []uuid.UUID{b, a},
		},
		{
			name: "ties break on completions then id",
			in: []repos.BookActivity{
				{BookID: c, Starts: 2},
				{BookID: b, Completions: 1},
				{BookID: a, Completions: 1},
			},
			want: []uuid.UUID{a, b, c},
		},
		{
			name: "inactive books dropped and topN applied",
			in: []repos.BookActivity{
				{BookID: a, Starts: 1},
				{BookID: b, Starts: 5},
				{BookID: c},
				{BookID: d, Starts: 3},
			},
			topN: 2,
			want: []uuid.UUID{b, d},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Rank(tc.in, tc.topN)
			var ids []uuid.UUID
			for i, r := range got {
				if r.Rank != i+1 {
					t.Fatalf("rank at %d = %d", i, r.Rank)
				}
				ids = append(ids, r.BookID)
			}
			if !reflect.DeepEqual(ids, tc.want) {
				t.Fatalf("order=%v want %v", ids, tc.want)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	records := repos.NewReadingRecordRepo(gdb, log)
	trend := repos.NewTrendingRepo(gdb, log)
	cache := repos.NewRecommendationCacheRepo(gdb, log)
	agg := NewAggregator(log, records, trend, cache, Config{Window: 7 * 24 * time.Hour, TopN: 20})

	popular := testutil.SeedBook(t, ctx, gdb, "popular", now.Add(-30*24*time.Hour))
	steady := testutil.SeedBook(t, ctx, gdb, "steady", now.Add(-30*24*time.Hour))
	stale := testutil.SeedBook(t, ctx, gdb, "stale", now.Add(-30*24*time.Hour))

	inWindow := testutil.PtrTime(now.Add(-2 * 24 * time.Hour))
	outOfWindow := testutil.PtrTime(now.Add(-20 * 24 * time.Hour))
	for i := 0; i < 3; i++ {
		testutil.SeedRecord(t, ctx, gdb, uuid.New(), popular.ID, types.RecordStatusCompleted, inWindow, inWindow)
	}
	testutil.SeedRecord(t, ctx, gdb, uuid.New(), steady.ID, types.RecordStatusReading, inWindow, nil)
	testutil.SeedRecord(t, ctx, gdb, uuid.New(), stale.ID, types.RecordStatusCompleted, outOfWindow, outOfWindow)

	userID := uuid.New()
	if err := cache.Upsert(dbctx.New(ctx), []*types.RecommendationCache{
		{UserID: userID, BookID: stale.ID, RecommendationType: types.RecommendationPersonalized, Score: 50, CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)},
		{UserID: userID, BookID: steady.ID, RecommendationType: types.RecommendationPersonalized, Score: 60, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)},
	}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	sum, err := agg.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if sum.Ranked != 2 || sum.ExpiredPurged != 1 {
		t.Fatalf("summary=%+v", sum)
	}

	top, err := trend.ListTop(dbctx.New(ctx), 10)
	if err != nil {
		t.Fatalf("ListTop: %v", err)
	}
	if len(top) != 2 || top[0].BookID != popular.ID || top[1].BookID != steady.ID {
		t.Fatalf("unexpected ranking: %+v", top)
	}
	// popular: 3 starts + 3 completions = 9
	if top[0].Score != 9 || top[0].Rank != 1 || top[0].Book == nil || top[0].Book.Title != "popular" {
		t.Fatalf("top row=%+v", top[0])
	}

	// A second run replaces rather than appends.
	if _, err := agg.Refresh(ctx, now); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	top, _ = trend.ListTop(dbctx.New(ctx), 10)
	if len(top) != 2 {
		t.Fatalf("rows after second refresh=%d want 2", len(top))
	}
}
