package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	medicinedomain "medtrack-backend/internal/medicine/domain"
	medicineRepo "medtrack-backend/internal/medicine/repository"
	notifdomain "medtrack-backend/internal/notification/domain"
	notifRepo "medtrack-backend/internal/notification/repository"
	notifUsecase "medtrack-backend/internal/notification/usecase"
	scheduledomain "medtrack-backend/internal/schedule/domain"
	scheduleRepo "medtrack-backend/internal/schedule/repository"
	"medtrack-backend/internal/scheduler"
	userdomain "medtrack-backend/internal/user/domain"
	userRepo "medtrack-backend/internal/user/repository"
	"medtrack-backend/pkg/config"
	"medtrack-backend/pkg/database"
	"medtrack-backend/pkg/fcm"
	"medtrack-backend/pkg/timeutil"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Resolve the reference zone before touching anything else; a broken
	// zone setting would silently corrupt every stored schedule time.
	normalizer, err := timeutil.NewNormalizer(cfg.ReferenceZone)
	if err != nil {
		log.Fatal("Failed to resolve reference zone:", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&userdomain.User{},
		&userdomain.DeviceToken{},
		&medicinedomain.Medicine{},
		&medicinedomain.IntakeLog{},
		&scheduledomain.Schedule{},
		&scheduledomain.ScheduleTime{},
		&notifdomain.Notification{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	deviceTokens := userRepo.NewDeviceTokenRepository(db)
	medicines := medicineRepo.NewMedicineRepository(db)
	schedules := scheduleRepo.NewScheduleRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)

	// Initialize FCM client (optional: absence of credentials is a valid
	// silent no-op push mode, notifications still persist)
	var pusher notifUsecase.Pusher
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			pusher = fcmClient
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, push delivery disabled")
	}

	// Initialize the notification emitter the scheduler writes through
	notificationService := notifUsecase.NewNotificationUsecase(notifications, deviceTokens, pusher)

	// Assemble and start the poll driver
	matcher := scheduler.NewReminderMatcher(schedules, notifications, notificationService, normalizer.Reference(), cfg.EnforceRecurrenceInterval)
	watcher := scheduler.NewInventoryWatcher(medicines, notifications, notificationService, cfg.InventoryRearm)
	driver := scheduler.New(matcher, watcher, nil, cfg.PollInterval)
	driver.Start()

	// Operational HTTP surface (liveness only)
	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Shutdown: stop scheduling new ticks, drain the HTTP server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	driver.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
