package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alixefin/kryptic-sub000/internal/config"
	"github.com/Alixefin/kryptic-sub000/internal/controller"
	"github.com/Alixefin/kryptic-sub000/internal/middleware"
	"github.com/Alixefin/kryptic-sub000/internal/rabbit"
	"github.com/Alixefin/kryptic-sub000/internal/repository"
	"github.com/Alixefin/kryptic-sub000/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDBName)

	// Redis (dedup de tareas de email)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// Conexión a RabbitMQ
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("Error conectando a RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("Error creando canal en RabbitMQ: %v", err)
	}

	publisher, err := rabbit.NewPublisher(ch)
	if err != nil {
		log.Fatalf("Error declarando exchange en RabbitMQ: %v", err)
	}

	// Repositorios y servicios
	orderRepo := repository.NewMongoOrderRepository(db)
	otpRepo := repository.NewMongoOtpRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	notifRepo := repository.NewMongoNotificationRepository(db)

	orderService := service.NewOrderService(orderRepo, publisher)
	otpService := service.NewOtpService(otpRepo, userRepo, publisher)
	notifService := service.NewNotificationService(notifRepo)
	authService := service.NewAuthService(cfg.AuthURL)
	mailService := service.NewMailService(cfg.MailURL)

	// Consumer de emails (at-least-once + dedup por taskId)
	rabbit.SetupConsumers(ch, rabbit.NewEmailConsumer(mailService, notifService, rdb))

	// Handlers
	orderCtrl := controller.NewOrderController(orderService)
	otpCtrl := controller.NewOtpController(otpService)
	notifCtrl := controller.NewNotificationController(notifService)

	// Router
	r := gin.Default()

	// Rutas públicas
	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders/reference/:reference", orderCtrl.GetByReference)
	r.POST("/otp/send", otpCtrl.SendCode)
	r.POST("/otp/verify", otpCtrl.VerifyCode)
	r.GET("/otp/verified", otpCtrl.IsEmailVerified)

	// Rutas protegidas (requieren token)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.GET("/orders/mine", orderCtrl.GetMyOrders)
	auth.GET("/orders/:orderId", orderCtrl.GetByID)
	auth.GET("/notifications/mine", notifCtrl.GetMine)
	auth.PATCH("/notifications/:id/read", notifCtrl.MarkRead)

	// Rutas admin
	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", orderCtrl.GetAllOrders)
	admin.GET("/orders/recent", orderCtrl.GetRecentOrders)
	admin.PATCH("/orders/:orderId/status", orderCtrl.UpdateStatus)
	admin.PATCH("/orders/:orderId/payment-status", orderCtrl.UpdatePaymentStatus)
	admin.DELETE("/orders/:orderId", orderCtrl.DeleteOrder)
	admin.GET("/notifications", notifCtrl.GetAdmin)

	// Ejecutar servidor
	log.Printf("Order Intake Service ejecutándose en puerto %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
