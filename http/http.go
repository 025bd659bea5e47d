package http

import (
	"net/http"

	"coursehub/http/handlers"
	"coursehub/http/middleware"
)

// Handlers bundles the wired endpoint handlers for route registration.
type Handlers struct {
	Payments      *handlers.PaymentHandler
	Admin         *handlers.AdminHandler
	Stats         *handlers.StatsHandler
	Notifications *handlers.NotificationHandler
	DLQ           *handlers.DLQHandler
}

// SetupRoutes configures all HTTP routes and middleware
func SetupRoutes(h *Handlers) {
	// Uploaded payment screenshots and generated receipts
	http.HandleFunc("/uploads/", middleware.EnableCORS(func(w http.ResponseWriter, r *http.Request) {
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads"))).ServeHTTP(w, r)
	}))

	// Student Payment APIs
	http.HandleFunc("/payments", middleware.EnableCORS(h.Payments.SubmitPayment))
	http.HandleFunc("/payments/check-reference", middleware.EnableCORS(h.Payments.CheckReference))

	// Admin Review APIs
	http.HandleFunc("/admin/payments", middleware.EnableCORS(h.Admin.ListPayments))
	http.HandleFunc("/admin/payments/export", middleware.EnableCORS(h.Admin.ExportPayments))
	http.HandleFunc("/admin/payments/decide", middleware.EnableCORS(h.Admin.DecidePayment))
	http.HandleFunc("/admin/payments/bulk-decide", middleware.EnableCORS(h.Admin.BulkDecidePayments))
	http.HandleFunc("/admin/payments/repair", middleware.EnableCORS(h.Admin.RepairPayment))
	http.HandleFunc("/admin/payments/stats", middleware.EnableCORS(h.Stats.GetPaymentStatistics))

	// Notification APIs
	http.HandleFunc("/notifications", middleware.EnableCORS(h.Notifications.ListNotifications))
	http.HandleFunc("/notifications/read", middleware.EnableCORS(h.Notifications.MarkNotificationRead))

	// DLQ Management APIs
	http.HandleFunc("/api/dlq/messages", middleware.EnableCORS(h.DLQ.GetDLQMessages))
	http.HandleFunc("/api/dlq/messages/retry", middleware.EnableCORS(h.DLQ.RetryDLQMessage))
	http.HandleFunc("/api/dlq/messages/resolve", middleware.EnableCORS(h.DLQ.ResolveDLQMessage))
	http.HandleFunc("/api/dlq/stats", middleware.EnableCORS(h.DLQ.GetDLQStats))
}
