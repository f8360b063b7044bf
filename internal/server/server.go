package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osheron/meritum/internal/catalog"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/event"
	"github.com/osheron/meritum/internal/handler"
	"github.com/osheron/meritum/internal/leaderboard"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/metrics"
	"github.com/osheron/meritum/internal/player"
	"github.com/osheron/meritum/internal/rules"
	"github.com/osheron/meritum/internal/wallet"
)

type Server struct {
	httpServer        *http.Server
	eventService      event.Service
	playerService     player.Service
	ruleService       rules.Service
	walletService     wallet.Service
	leaderboardEngine *leaderboard.Engine
	descriptorCatalog *catalog.Catalog
	evaluationSandbox *rules.Sandbox
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, eventService event.Service, playerService player.Service, ruleService rules.Service, walletService wallet.Service, leaderboardEngine *leaderboard.Engine, descriptorCatalog *catalog.Catalog, evaluationSandbox *rules.Sandbox, checkers ...handler.HealthChecker) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(checkers...))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", handler.HandleIngestEvent(eventService))
			r.Post("/sandbox/dry-run", handler.HandleDryRunEvent(evaluationSandbox))
			r.Get("/catalog", handler.HandleGetEventTypes(descriptorCatalog))
			r.Get("/user/{userId}", handler.HandleGetEventsByUser(eventService))
			r.Get("/type/{eventType}", handler.HandleGetEventsByType(eventService))
			r.Get("/{eventId}", handler.HandleGetEvent(eventService))
		})

		r.Get("/catalog", handler.HandleGetCatalog(descriptorCatalog))

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/state", handler.HandleGetUserProfile(playerService))
			r.Get("/points", handler.HandleGetUserPoints(playerService))
			r.Get("/points/{categoryId}", handler.HandleGetUserCategoryPoints(playerService))
			r.Get("/badges", handler.HandleGetUserBadges(playerService))
			r.Get("/trophies", handler.HandleGetUserTrophies(playerService))
			r.Get("/levels", handler.HandleGetUserLevels(playerService))
			r.Get("/levels/{categoryId}", handler.HandleGetUserCategoryLevel(playerService))
			r.Get("/rewards/history", handler.HandleGetUserHistory(playerService))
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", handler.HandleListRules(ruleService))
			r.Post("/", handler.HandleCreateRule(ruleService))
			r.Get("/active", handler.HandleListActiveRules(ruleService))
			r.Get("/trigger/{eventType}", handler.HandleListRulesByTrigger(ruleService))
			r.Get("/{ruleId}", handler.HandleGetRule(ruleService))
			r.Put("/{ruleId}", handler.HandleUpdateRule(ruleService))
			r.Delete("/{ruleId}", handler.HandleDeleteRule(ruleService))
			r.Post("/{ruleId}/activate", handler.HandleSetRuleActive(ruleService, true))
			r.Post("/{ruleId}/deactivate", handler.HandleSetRuleActive(ruleService, false))
		})

		r.Route("/leaderboards", func(r chi.Router) {
			r.Get("/", handler.HandleGetLeaderboard(leaderboardEngine))
			r.Post("/refresh", handler.HandleRefreshLeaderboard(leaderboardEngine))
			r.Delete("/cache", handler.HandleClearLeaderboardCache(leaderboardEngine))
			r.Get("/points/{categoryId}", handler.HandleGetTypedLeaderboard(leaderboardEngine, domain.LeaderboardPoints))
			r.Get("/levels/{categoryId}", handler.HandleGetTypedLeaderboard(leaderboardEngine, domain.LeaderboardLevel))
			r.Get("/badges", handler.HandleGetTypedLeaderboard(leaderboardEngine, domain.LeaderboardBadges))
			r.Get("/trophies", handler.HandleGetTypedLeaderboard(leaderboardEngine, domain.LeaderboardTrophies))
			r.Get("/user/{userId}/rank", handler.HandleGetUserLeaderboardRank(leaderboardEngine))
			r.Get("/user/{userId}/context", handler.HandleGetUserLeaderboardContext(leaderboardEngine))
		})

		r.Route("/wallets/{userId}/{categoryId}", func(r chi.Router) {
			r.Get("/", handler.HandleGetWallet(walletService))
			r.Get("/transactions", handler.HandleGetWalletTransactions(walletService))
			r.Post("/spend", handler.HandleSpend(walletService))
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", handler.HandleCreateTransfer(walletService))
			r.Get("/{transferId}", handler.HandleGetTransfer(walletService))
			r.Post("/{transferId}/complete", handler.HandleCompleteTransfer(walletService))
			r.Post("/{transferId}/cancel", handler.HandleCancelTransfer(walletService))
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		eventService:      eventService,
		playerService:     playerService,
		ruleService:       ruleService,
		walletService:     walletService,
		leaderboardEngine: leaderboardEngine,
		descriptorCatalog: descriptorCatalog,
		evaluationSandbox: evaluationSandbox,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()

		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
