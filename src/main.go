package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "staffclock/docs"
	"staffclock/src/config"
	"staffclock/src/controllers"
	"staffclock/src/database"
	"staffclock/src/jobs"
	"staffclock/src/repository"
	"staffclock/src/routes"
	"staffclock/src/services/attendance"
	"staffclock/src/services/auth"
	"staffclock/src/services/geolocation"
	"staffclock/src/services/timesheet"
	"staffclock/src/services/users"
	"staffclock/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const userLockTTL = 30 * time.Second

// openStore เลือก store ตาม STORE_DRIVER
func openStore(ctx context.Context, cfg *config.Config) (attendance.Repository, users.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := database.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewMongoAttendanceRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() { _ = db.Client().Disconnect(context.Background()) }
		return repo, repository.NewMongoUserRepository(db), cleanup, nil

	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repository.NewPostgresAttendanceRepository(pool), repository.NewPostgresUserRepository(pool), pool.Close, nil

	case config.DriverMemory:
		log.Println("⚠️ Using in-memory store. Data is lost on restart.")
		return repository.NewMemoryAttendanceRepository(), repository.NewMemoryUserRepository(), func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	attendanceRepo, userRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}
	defer closeStore()

	// Redis เป็น optional: ไม่มี = lock ใน process, ไม่มี cache/blacklist/queue
	redisClient := database.InitRedis(ctx, cfg.RedisURI)
	asynqClient := database.InitAsynq(cfg.RedisURI, redisClient != nil)

	engineOpts := attendance.Options{
		Location:     cfg.TimeZone,
		GeoTimeout:   cfg.GeoTimeout,
		StoreTimeout: cfg.StoreTimeout,
		Locker:       attendance.NewKeyedMutex(),
	}
	if redisClient != nil {
		defer redisClient.Close()
		engineOpts.Locker = attendance.NewRedisLocker(redisClient, userLockTTL)
	}
	if asynqClient != nil {
		defer asynqClient.Close()
		engineOpts.Reconciler = jobs.NewReconciler(asynqClient)

		worker := database.NewAsynqServer(cfg.RedisURI, cfg.WorkerConcurrency)
		if err := worker.Start(jobs.NewServeMux(attendanceRepo)); err != nil {
			log.Fatalf("❌ Failed to start worker: %v", err)
		}
		defer worker.Shutdown()
		log.Println("✅ Asynq worker started")
	}

	resolver := geolocation.NewResolver(geolocation.Options{
		BaseURL:       cfg.NominatimURL,
		UserAgent:     cfg.NominatimUserAgent,
		RatePerSecond: cfg.GeoRatePerSecond,
		Cache:         redisClient,
		CacheTTL:      cfg.GeoCacheTTL,
	})
	engine := attendance.NewEngine(attendanceRepo, resolver, engineOpts)

	tokens := utils.NewTokenStore(redisClient)
	userService := users.NewService(userRepo, cfg.AdminEmails)
	google := auth.NewGoogleService(auth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirect,
		JWTSecret:    cfg.JWTSecret,
	}, userService)

	// สร้าง app instance
	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// เปิดใช้งาน Swagger ที่ URL /swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	routes.InitRoutes(app, routes.Handlers{
		Attendance: controllers.NewAttendanceController(engine, time.Now),
		Admin:      controllers.NewAdminController(timesheet.NewService(attendanceRepo, cfg.TimeZone)),
		Auth:       controllers.NewAuthController(google, tokens, cfg.FrontendURL),
		JWTSecret:  cfg.JWTSecret,
		Tokens:     tokens,
	})

	go func() {
		<-ctx.Done()
		log.Println("⚠️ Shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// เริ่มเซิร์ฟเวอร์
	log.Printf("Server is running on port %s (store=%s, tz=%s)", cfg.AppURI, cfg.StoreDriver, cfg.TimeZone)
	if err := app.Listen(fmt.Sprintf(":%s", url.PathEscape(cfg.AppURI))); err != nil {
		log.Println("❌ Server stopped:", err)
	}
}
