package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seat-lock-reservation/internal/config"
	"github.com/iliyamo/seat-lock-reservation/internal/database"
	"github.com/iliyamo/seat-lock-reservation/internal/handler"
	"github.com/iliyamo/seat-lock-reservation/internal/lockstore"
	"github.com/iliyamo/seat-lock-reservation/internal/middleware"
	"github.com/iliyamo/seat-lock-reservation/internal/payment"
	"github.com/iliyamo/seat-lock-reservation/internal/queue"
	"github.com/iliyamo/seat-lock-reservation/internal/repository"
	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
	"github.com/iliyamo/seat-lock-reservation/internal/router"
)

// lockBackend is a lock store the seat map can also peek into.
type lockBackend interface {
	reservation.LockStore
	handler.LockPeeker
}

// bookingBackend covers both the controller's and the handler's needs.
type bookingBackend interface {
	reservation.BookingStore
	handler.BookingReader
}

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	locks, sched := openLocks(cfg, rdb)
	if sched != nil {
		defer func() { _ = sched.Shutdown() }()
	}

	bookings, catalog, db, showID := openStores(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	opts := []reservation.Option{
		reservation.WithLockTTL(cfg.LockTTL),
		reservation.WithDebug(cfg.Debug),
	}
	if cfg.Events.Enabled {
		opts = append(opts, reservation.WithPublisher(queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue)))
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, cfg.Events.LogDir)
		consumer.Prefetch = cfg.Events.Prefetch
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: stopped: %v", err)
			}
		}()
	}
	secure := reservation.NewController(locks, bookings, payment.Simulated{Delay: cfg.ConfirmDelay}, opts...)
	naive := reservation.NewNaive(bookings, cfg.NaiveDelay)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	checks := map[string]handler.Check{}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if db != nil {
		checks["mysql"] = db.PingContext
	}
	router.RegisterRoutes(e, handler.NewHealthHandler(checks))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterReservations(e, handler.NewReservationHandler(secure, naive, bookings, catalog, locks), limiter, cache)
	router.RegisterSimulation(e, &handler.SimulationHandler{Secure: secure, Naive: naive, DefaultShowID: showID}, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, locks=%s, store=%s)", addr, cfg.Env, cfg.LockBackend, cfg.StoreBackend)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openLocks selects the lock store.  The redis backend is mandatory when
// configured: without it there is no mutual exclusion.
func openLocks(cfg config.Config, rdb *redis.Client) (lockBackend, gocron.Scheduler) {
	if cfg.LockBackend == config.BackendRedis {
		if rdb == nil {
			log.Fatal("LOCK_BACKEND=redis but redis is unreachable")
		}
		return lockstore.NewRedisStore(rdb), nil
	}
	mem := lockstore.NewMemoryStore()
	sched, err := lockstore.StartSweeper(mem, cfg.LockSweepInterval)
	if err != nil {
		log.Fatalf("lock sweeper: %v", err)
	}
	log.Printf("using in-process lock store; locks are not shared between instances")
	return mem, sched
}

func openStores(ctx context.Context, cfg config.Config) (bookingBackend, handler.Catalog, *sql.DB, uint64) {
	if cfg.StoreBackend == config.BackendMemory {
		catalog := repository.NewMemoryCatalog()
		return repository.NewMemoryBookingStoreFor(catalog), catalog, nil, 1
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	showID := uint64(1)
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		if showID, err = database.Seed(ctx, db); err != nil {
			log.Fatalf("db seed: %v", err)
		}
		log.Printf("catalog ready (show %d)", showID)
	}
	return repository.NewBookingRepo(db), repository.NewCatalogRepo(db), db, showID
}
