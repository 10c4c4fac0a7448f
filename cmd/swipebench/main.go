package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kindled/match-engine/internal/app"
	"github.com/kindled/match-engine/internal/cache"
	"github.com/kindled/match-engine/internal/config"
	"github.com/kindled/match-engine/internal/db"
	"github.com/kindled/match-engine/internal/events"
	"github.com/kindled/match-engine/internal/logger"
	"github.com/kindled/match-engine/internal/repository"
	"github.com/kindled/match-engine/internal/service/swipe"
)

// swipebench drives reciprocal right-swipe storms through the engine and
// checks the single-match / single-event invariant under concurrency.
func main() {
	cfg := config.New()
	logger.InitFromConfig(cfg)
	logg := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		logg.Warn("redis unavailable, counter cache updates will be skipped", "err", err)
	}

	recorder := events.NewRecorder()
	appCtx := app.New(cfg, database, redisCache, recorder, logg)
	svc := swipe.NewService(appCtx)

	ctx := context.Background()

	pairs := envInt("PAIRS", 500)
	conc := envInt("CONC", 8)

	// seed 2*pairs profiles around one city center
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	ids := make([]uint64, 0, 2*pairs)
	for i := 0; i < 2*pairs; i++ {
		p := db.Profile{
			Username:     fmt.Sprintf("bench%d-%d", time.Now().UnixNano(), i),
			Email:        fmt.Sprintf("bench%d-%d@example.com", time.Now().UnixNano(), i),
			PasswordHash: "x",
			Gender:       "female",
			Age:          25,
			Latitude:     40.0 + (r.Float64()-0.5)*0.1,
			Longitude:    -74.0 + (r.Float64()-0.5)*0.1,
		}
		if err := database.Create(&p).Error; err != nil {
			log.Fatalf("failed to seed profile: %v", err)
		}
		ids = append(ids, p.ID)
	}

	// each job is one direction of a reciprocal pair; both directions race
	type job struct{ actor, target uint64 }
	feed := make(chan job, 2*pairs)
	for i := 0; i < pairs; i++ {
		a, b := ids[2*i], ids[2*i+1]
		feed <- job{a, b}
		feed <- job{b, a}
	}
	close(feed)

	latCh := make(chan time.Duration, 2*pairs)
	var wg sync.WaitGroup
	t0 := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range feed {
				st := time.Now()
				if _, err := svc.RecordSwipe(ctx, j.actor, j.target, db.DirectionRight, false); err != nil {
					logg.Error("swipe failed", "actor", j.actor, "target", j.target, "err", err)
				}
				latCh <- time.Since(st)
			}
		}()
	}
	wg.Wait()
	close(latCh)
	total := time.Since(t0)

	lats := make([]time.Duration, 0, 2*pairs)
	for d := range latCh {
		lats = append(lats, d)
	}

	// invariant check: exactly one Match per pair, one event per pair
	matchRepo := repository.NewMatchRepository(database)
	bad := 0
	for i := 0; i < pairs; i++ {
		n, err := matchRepo.CountForPair(ctx, ids[2*i], ids[2*i+1])
		if err != nil {
			log.Fatalf("count failed: %v", err)
		}
		if n != 1 {
			bad++
			logg.Error("pair has wrong match count", "a", ids[2*i], "b", ids[2*i+1], "count", n)
		}
	}
	published := len(recorder.Events())

	fmt.Printf("pairs=%d conc=%d\n", pairs, conc)
	fmt.Printf("swipes: %d in %v (%.0f/s), p50=%v p95=%v p99=%v\n",
		len(lats), total, float64(len(lats))/total.Seconds(),
		pct(lats, 0.50), pct(lats, 0.95), pct(lats, 0.99))
	fmt.Printf("matches: expected=%d wrong=%d events=%d\n", pairs, bad, published)

	if bad > 0 || published != pairs {
		os.Exit(1)
	}
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}
