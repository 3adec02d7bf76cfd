package main

import (
	"log"
	"os"
	"time"

	"khodarji-server/internal/cart"
	"khodarji-server/internal/controllers/http"
	mmysql "khodarji-server/internal/infra/mysql"
	"khodarji-server/internal/infra/rabbitmq"
	"khodarji-server/internal/infra/rediscache"
	mysqlrepo "khodarji-server/internal/repository/mysql"
	"khodarji-server/internal/services"
	"khodarji-server/internal/voice"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	productRepo := mysqlrepo.NewProductRepository(db)
	orderRepo := mysqlrepo.NewOrderRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)
	enrollmentRepo := mysqlrepo.NewEnrollmentRepository(db)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "khodarji.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	carts := cart.NewStore(rediscache.NewCartStore(redisClient))

	catalog := services.NewCatalogService(productRepo)
	catalog.SetRedisClient(redisClient)

	auth := services.NewAuthService(userRepo)
	orders := services.NewOrderService(orderRepo, carts, publisher)
	enrollments := services.NewEnrollmentService(enrollmentRepo)

	model := os.Getenv("LIVE_MODEL")
	if model == "" {
		model = "models/gemini-2.0-flash-live-001"
	}
	voiceManager := voice.NewManager(voice.NewLiveDialer(), carts, model)
	defer voiceManager.CloseAll()

	handler := http.NewHandler(auth, catalog, orders, enrollments, carts, voiceManager)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting khodarji server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
