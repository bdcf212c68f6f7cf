package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/roombooking/api"
	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/bootstrap"
	"github.com/Domenick1991/roombooking/internal/cache"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/ratelimit"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/internal/repository/memory"
	"github.com/Domenick1991/roombooking/internal/service/auth"
	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/Domenick1991/roombooking/internal/service/rooms"
	"github.com/Domenick1991/roombooking/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stores struct {
	rooms        repository.RoomRepository
	bookings     repository.BookingRepository
	availability repository.AvailabilityIndex
	users        repository.UserRepository
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Service: "roombooking-api"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]bootstrap.HealthCheck{}

	var st stores
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		st = stores{rooms: store.Rooms(), bookings: store.Bookings(), availability: store.Availability(), users: store.Users()}
		log.Warn().Msg("using in-memory storage, data is lost on restart")
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migrate schema")
			}
		}
		st = stores{
			rooms:        repository.NewRoomRepository(pool),
			bookings:     repository.NewBookingRepository(pool),
			availability: repository.NewAvailabilityIndex(pool),
			users:        repository.NewUserRepository(pool),
		}
		checks["postgres"] = pool.Ping
	}

	roomOpts := []rooms.RoomServiceOption{rooms.WithLogger(log)}
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLocalLimiter(10 * time.Minute)
	}
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()

		redisCache := cache.NewRedisCache(client, cfg.Cache.RoomsTTL())
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable at startup, cache and limiter degrade until it recovers")
		}
		roomOpts = append(roomOpts, rooms.WithCache(redisCache))
		checks["redis"] = redisCache.Ping

		if cfg.RateLimit.Enabled {
			limiter = &ratelimit.Fallback{
				Primary:   ratelimit.NewRedisLimiter(client, cfg.RateLimit.Prefix),
				Secondary: limiter,
				Log:       log,
			}
		}
	}

	bookingOpts := []booking.BookingServiceOption{booking.WithPastStartPolicy(cfg.Booking.PastStartPolicy)}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
		checks["kafka"] = producer.CheckConnection
	}

	roomService := rooms.NewRoomService(st.rooms, roomOpts...)
	bookingService := booking.NewBookingService(st.bookings, st.availability, bookingOpts...)
	authService := auth.NewAuthService(st.users, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL(), auth.WithBcryptCost(cfg.Auth.BcryptCost))

	if cfg.Auth.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("seed admin user")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterDeps{
		Rooms:    api.NewRoomHandler(roomService, bookingService),
		Bookings: api.NewBookingHandler(bookingService),
		Auth:     api.NewAuthHandler(authService),
		Tokens:   authService,
		Limiter:  limiter,
		BookingPolicy: ratelimit.Policy{
			Name:      "booking",
			PerMinute: cfg.RateLimit.BookingPerMinute,
			Burst:     cfg.RateLimit.Burst,
		},
		RegistrationPolicy: ratelimit.Policy{
			Name:      "registration",
			PerMinute: cfg.RateLimit.RegistrationPerMinute,
			Burst:     cfg.RateLimit.Burst,
		},
		Log: log,
	})

	if err := bootstrap.Run(ctx, cfg, router, checks, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
