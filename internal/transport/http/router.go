package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/talenthub-api/internal/application/conversation"
	"github.com/talenthub-api/internal/application/notification"
	"github.com/talenthub-api/internal/config"
	"github.com/talenthub-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/talenthub-api/internal/infrastructure/jwt"
	s3infra "github.com/talenthub-api/internal/infrastructure/s3"
	"github.com/talenthub-api/internal/realtime"
	"github.com/talenthub-api/internal/transport/http/handler"
	appmiddleware "github.com/talenthub-api/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	MessageRepo      *dynamo.MessageRepo
	NotificationRepo *dynamo.NotificationRepo
	ProfileRepo      *dynamo.ProfileRepo
	S3Store          *s3infra.Store
	Registry         *realtime.Registry
	Dispatcher       *realtime.Dispatcher
	JWTProvider      *jwtinfra.Provider
	Logger           *zap.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to write-heavy endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	convSvc := conversation.NewService(conversation.ServiceDeps{
		MessageRepo: deps.MessageRepo,
		ProfileRepo: deps.ProfileRepo,
		Dispatcher:  deps.Dispatcher,
		Logger:      deps.Logger,
	})
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		ProfileRepo:      deps.ProfileRepo,
		Dispatcher:       deps.Dispatcher,
		Logger:           deps.Logger,
	})

	wsOpts := realtime.Options{
		Buffer:       cfg.SessionBuffer,
		ReadLimit:    cfg.WSReadLimit,
		PingPeriod:   cfg.WSPingPeriod,
		WriteTimeout: cfg.WSWriteTimeout,
	}

	healthH := handler.NewHealthHandler()
	messageH := handler.NewMessageHandler(convSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	triggerH := handler.NewTriggerHandler(notifSvc, deps.Logger)
	attachmentH := handler.NewAttachmentHandler(deps.S3Store)
	wsH := handler.NewWSHandler(deps.JWTProvider, deps.Registry, deps.Dispatcher, wsOpts, cfg.AllowedOrigins, deps.Logger)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)

		// The live channel authenticates itself: a missing or invalid token
		// yields an anonymous session, not a rejected upgrade.
		r.Get("/ws", wsH.Serve)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.With(sensitiveRL.Limit).Post("/messages", messageH.Send)
			r.With(sensitiveRL.Limit).Post("/messages/attachments", attachmentH.Upload)
			r.Get("/messages/unread-count", messageH.UnreadCounts)
			r.Patch("/messages/read/{senderId}", messageH.MarkRead)
			r.Get("/messages/{userId}", messageH.ListConversation)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Patch("/notifications/mark-read/{id}", notifH.MarkRead)
			r.Patch("/notifications/mark-unread/{id}", notifH.MarkUnread)
			r.Patch("/notifications/mark-all-read", notifH.MarkAllRead)

			r.Post("/connections/request", triggerH.ConnectionRequest)
			r.Post("/connections/accept", triggerH.ConnectionAccept)
			r.Post("/applications/status", triggerH.ApplicationStatus)
		})
	})

	return r
}
