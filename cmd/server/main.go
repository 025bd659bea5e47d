package main

import (
	"fmt"
	"log"
	netHttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"coursehub/config"
	"coursehub/db"
	coursehubhttp "coursehub/http"
	"coursehub/http/handlers"
	"coursehub/logger"
	"coursehub/repository"
	"coursehub/services"
	"coursehub/services/kafka"
)

func main() {
	// Determine project root by searching upward for go.mod
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal("Error getting current working directory:", err)
	}

	absProjectRoot := findProjectRoot(cwd)
	if absProjectRoot == "" {
		log.Fatalf("Could not locate project root (go.mod) from %s", cwd)
	}

	if err := os.Chdir(absProjectRoot); err != nil {
		log.Fatal("Error changing to project root:", err)
	}
	logger.Info("Working directory set to project root: %s", absProjectRoot)

	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := db.InitDB(); err != nil {
		logger.Fatal("Error initializing database: %v", err)
	}

	// Stores
	paymentStore := repository.NewPaymentStore(db.DB)
	enrollmentStore := repository.NewEnrollmentStore(db.DB)
	courseStore := repository.NewCourseStore(db.DB)
	studentStore := repository.NewStudentStore(db.DB)
	adminStore := repository.NewAdminStore(db.DB)
	notificationStore := repository.NewNotificationStore(db.DB)
	dlqStore := repository.NewDLQStore(db.DB)

	// Kafka producer + DLQ parking (non-fatal when brokers are down)
	kafka.RegisterDLQStore(dlqStore)
	kafka.InitProducer()

	// Email consumer: drains the emails topic and delivers via SMTP
	if err := kafka.InitConsumer(); err != nil {
		logger.Warn("Kafka consumer initialization failed: %v", err)
	}
	kafka.RegisterEmailProcessor(processEmailEvent)
	kafka.StartConsumer()
	kafka.StartDLQAutoRetry(5 * time.Minute)

	// Services
	dispatcher := services.NewDispatcher(notificationStore, adminStore, studentStore,
		services.NewReceiptGenerator(""))
	screenshots := services.NewDiskScreenshotStore("")
	paymentService := services.NewPaymentService(paymentStore, enrollmentStore, courseStore,
		studentStore, screenshots, dispatcher)
	syncer := services.NewEnrollmentSyncer(enrollmentStore, courseStore)
	decisionService := services.NewDecisionService(paymentStore, courseStore, syncer, dispatcher)
	statsService := services.NewStatisticsService(paymentStore)

	// Setup routes
	coursehubhttp.SetupRoutes(&coursehubhttp.Handlers{
		Payments:      handlers.NewPaymentHandler(paymentService),
		Admin:         handlers.NewAdminHandler(paymentService, decisionService),
		Stats:         handlers.NewStatsHandler(statsService),
		Notifications: handlers.NewNotificationHandler(notificationStore),
		DLQ:           handlers.NewDLQHandler(dlqStore),
	})

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting on :8080")
		log.Fatal(netHttp.ListenAndServe(":8080", nil))
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, closing Kafka clients...")

	kafka.StopDLQAutoRetry()
	if err := kafka.StopConsumer(); err != nil {
		logger.Error("Error closing Kafka consumer: %v", err)
	}
	if err := kafka.Close(); err != nil {
		logger.Error("Error closing Kafka producer: %v", err)
	}

	logger.Info("Server shutdown complete")
}

// processEmailEvent delivers one queued email.send event via SMTP.
func processEmailEvent(payload map[string]interface{}) error {
	to, _ := payload["to"].(string)
	subject, _ := payload["subject"].(string)
	body, _ := payload["body"].(string)
	if to == "" {
		return fmt.Errorf("email.send event missing recipient")
	}

	if attachment, _ := payload["attachment"].(string); attachment != "" {
		return services.SendEmailDirect(to, subject, body, attachment)
	}
	return services.SendEmailDirect(to, subject, body)
}

// findProjectRoot walks up from start and returns the first directory containing go.mod
func findProjectRoot(start string) string {
	dir := start
	for {
		// check for go.mod
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		// move up
		parent := filepath.Dir(dir)
		if parent == dir || strings.HasSuffix(dir, ":\\") || parent == "" {
			break
		}
		dir = parent
	}
	return ""
}
