// Package http serves the construction budget API: project and cost entry
// CRUD, budget statistics, receipt uploads, CSV export, and the Gmail
// connection endpoints.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cantiere/internal/middleware/auth"
	"cantiere/internal/middleware/ratelimit"
	"cantiere/internal/middleware/security"
	"cantiere/internal/middleware/trace"
	"cantiere/internal/services"
)

// Deps carries every collaborator the server needs. Scans may be nil when
// receipt ingestion is disabled; everything else is required.
type Deps struct {
	Projects    *services.ProjectService
	Entries     *services.EntryService
	Taxonomy    *services.TaxonomyService
	Stats       *services.StatsService
	Receipts    *services.ReceiptService
	Connections *services.ConnectionService
	Export      *services.ExportService
	Scans       services.ScanDispatcher

	// APIToken guards every endpoint except the health probes when set.
	APIToken string
}

type Server struct {
	http.Server

	projects    *services.ProjectService
	entries     *services.EntryService
	taxonomy    *services.TaxonomyService
	stats       *services.StatsService
	receipts    *services.ReceiptService
	connections *services.ConnectionService
	export      *services.ExportService
	scans       services.ScanDispatcher

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		projects:    deps.Projects,
		entries:     deps.Entries,
		taxonomy:    deps.Taxonomy,
		stats:       deps.Stats,
		receipts:    deps.Receipts,
		connections: deps.Connections,
		export:      deps.Export,
		scans:       deps.Scans,
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		startedAt:   time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.tracer = trace.NewMiddleware(clientIP)
	authn := auth.NewMiddleware(deps.APIToken, "/healthz", "/readyz")

	// Built inside-out: tracing sees every request, the limiter answers 429
	// before any auth work happens, auth fences the rest of the surface.
	handler := authn.Middleware(mux)
	handler = s.withRateLimit(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{Addr: addr, Handler: handler}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("GET /projects/{id}", s.handleGetProject)
	mux.HandleFunc("PUT /projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("GET /projects/{id}/stats", s.handleProjectStats)
	mux.HandleFunc("GET /projects/{id}/export", s.handleExportProject)

	mux.HandleFunc("POST /projects/{id}/timesheets", s.handleCreateTimesheet)
	mux.HandleFunc("GET /projects/{id}/timesheets", s.handleListTimesheets)
	mux.HandleFunc("PUT /timesheets/{id}", s.handleUpdateTimesheet)
	mux.HandleFunc("DELETE /timesheets/{id}", s.handleDeleteTimesheet)

	mux.HandleFunc("POST /projects/{id}/equipment", s.handleCreateEquipmentLog)
	mux.HandleFunc("GET /projects/{id}/equipment", s.handleListEquipmentLogs)
	mux.HandleFunc("PUT /equipment/{id}", s.handleUpdateEquipmentLog)
	mux.HandleFunc("DELETE /equipment/{id}", s.handleDeleteEquipmentLog)

	mux.HandleFunc("POST /projects/{id}/subcontractors", s.handleCreateSubcontractorEntry)
	mux.HandleFunc("GET /projects/{id}/subcontractors", s.handleListSubcontractorEntries)
	mux.HandleFunc("PUT /subcontractors/{id}", s.handleUpdateSubcontractorEntry)
	mux.HandleFunc("DELETE /subcontractors/{id}", s.handleDeleteSubcontractorEntry)

	mux.HandleFunc("POST /projects/{id}/overhead", s.handleCreateOverheadEntry)
	mux.HandleFunc("GET /projects/{id}/overhead", s.handleListOverheadEntries)
	mux.HandleFunc("PUT /overhead/{id}", s.handleUpdateOverheadEntry)
	mux.HandleFunc("DELETE /overhead/{id}", s.handleDeleteOverheadEntry)

	mux.HandleFunc("POST /projects/{id}/reports", s.handleCreateReport)
	mux.HandleFunc("GET /projects/{id}/reports", s.handleListReports)
	mux.HandleFunc("DELETE /reports/{id}", s.handleDeleteReport)
	mux.HandleFunc("GET /projects/{id}/materials", s.handleListMaterials)

	mux.HandleFunc("POST /projects/{id}/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /projects/{id}/categories", s.handleListCategories)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /projects/{id}/changeorders", s.handleCreateChangeOrder)
	mux.HandleFunc("GET /projects/{id}/changeorders", s.handleListChangeOrders)
	mux.HandleFunc("PUT /changeorders/{id}", s.handleUpdateChangeOrder)
	mux.HandleFunc("DELETE /changeorders/{id}", s.handleDeleteChangeOrder)

	mux.HandleFunc("POST /employees", s.handleCreateEmployee)
	mux.HandleFunc("GET /employees", s.handleListEmployees)
	mux.HandleFunc("PUT /employees/{id}", s.handleUpdateEmployee)
	mux.HandleFunc("DELETE /employees/{id}", s.handleDeleteEmployee)

	mux.HandleFunc("POST /projects/{id}/receipts", s.handleUploadReceipt)
	mux.HandleFunc("GET /projects/{id}/receipts", s.handleListReceipts)
	mux.HandleFunc("GET /receipts/{id}", s.handleGetReceipt)
	mux.HandleFunc("DELETE /receipts/{id}", s.handleDeleteReceipt)
	mux.HandleFunc("POST /receipts/{id}/link", s.handleLinkReceipt)
	mux.HandleFunc("GET /receipts/{id}/links", s.handleReceiptLinks)
	mux.HandleFunc("DELETE /receipt-links/{id}", s.handleUnlinkReceipt)
	mux.HandleFunc("POST /receipts/{id}/reprocess", s.handleReprocessReceipt)

	mux.HandleFunc("POST /gmail-connection", s.handleConnectGmail)
	mux.HandleFunc("GET /gmail-connection", s.handleActiveConnection)
	mux.HandleFunc("GET /gmail-connections", s.handleListConnections)
	mux.HandleFunc("DELETE /gmail-connection/{id}", s.handleDisconnectGmail)
	mux.HandleFunc("POST /gmail-connection/scan", s.handleScanRequest)
}

// withRateLimit applies the per-client limiter to mutating requests only;
// reads and health probes stay unthrottled.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.limiter.Allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondJSON(w, r, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
		"requests":  s.tracer.Metrics().TotalRequests,
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if _, err := s.projects.ListProjects(ctx); err != nil {
		checks["database"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	respondJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// Shutdown stops the limiter cleanup goroutine and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
