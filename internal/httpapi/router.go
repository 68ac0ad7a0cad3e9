package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/assetledger/backend/internal/audit"
	"github.com/assetledger/backend/internal/auth"
	"github.com/assetledger/backend/internal/billing"
	"github.com/assetledger/backend/internal/database"
	"github.com/assetledger/backend/internal/logging"
	"github.com/assetledger/backend/internal/metrics"
	"github.com/assetledger/backend/internal/notify"
	"github.com/assetledger/backend/internal/rbac"
	"github.com/assetledger/backend/internal/sensors"
	"github.com/assetledger/backend/internal/sysstatus"
	"github.com/assetledger/backend/internal/workflow"
)

// Server bundles every collaborator the HTTP surface needs. It is built
// once in cmd/server/main.go and owns no lifecycle of its own beyond the
// handlers it exposes through Router().
type Server struct {
	log     *logging.Logger
	metrics *metrics.Metrics
	status  *sysstatus.Reporter
	auditor *audit.Recorder

	sessions *auth.SessionService
	tokens   *auth.TokenManager

	assets   *database.AssetRepo
	lookups  *database.LookupRepo
	auditRds *database.AuditRepo

	loans       *workflow.LoanService
	rentals     *workflow.RentalService
	rentalRepo  *database.RentalRepo
	loanRepo    *database.LoanRepo
	workorders  *workflow.WorkOrderService
	workOrdRepo *database.WorkOrderRepo
	conversions *workflow.ConversionService
	approvals   *workflow.ApprovalService
	approvalRepo *database.ApprovalRepo

	timesheets  *billing.TimesheetService
	billing     *billing.BillingPeriodService
	billingRepo *database.BillingRepo
	tsRepo      *database.TimesheetRepo

	maintenance *database.MaintenanceRepo

	sensorIngest *sensors.IngestService
	sensorAlerts *sensors.AlertService

	notifications *notify.Service
	hub           *notify.Hub

	rbacMiddleware *rbac.Middleware
}

// NewServer assembles the HTTP surface from already-constructed
// collaborators; cmd/server/main.go is responsible for wiring those. The
// RBAC resolver and matrix are taken separately rather than a pre-built
// *rbac.Middleware so the claims accessor and error writer can stay the
// package-private functions they are.
func NewServer(
	log *logging.Logger,
	m *metrics.Metrics,
	status *sysstatus.Reporter,
	auditor *audit.Recorder,
	sessions *auth.SessionService,
	tokens *auth.TokenManager,
	assets *database.AssetRepo,
	lookups *database.LookupRepo,
	auditRds *database.AuditRepo,
	loans *workflow.LoanService,
	loanRepo *database.LoanRepo,
	rentals *workflow.RentalService,
	rentalRepo *database.RentalRepo,
	workorders *workflow.WorkOrderService,
	workOrdRepo *database.WorkOrderRepo,
	conversions *workflow.ConversionService,
	approvals *workflow.ApprovalService,
	approvalRepo *database.ApprovalRepo,
	timesheets *billing.TimesheetService,
	tsRepo *database.TimesheetRepo,
	billingSvc *billing.BillingPeriodService,
	billingRepo *database.BillingRepo,
	maintenance *database.MaintenanceRepo,
	sensorIngest *sensors.IngestService,
	sensorAlerts *sensors.AlertService,
	notifications *notify.Service,
	hub *notify.Hub,
	resolver *rbac.Resolver,
	matrix *rbac.Matrix,
) *Server {
	return &Server{
		log: log, metrics: m, status: status, auditor: auditor,
		sessions: sessions, tokens: tokens,
		assets: assets, lookups: lookups, auditRds: auditRds,
		loans: loans, loanRepo: loanRepo, rentals: rentals, rentalRepo: rentalRepo,
		workorders: workorders, workOrdRepo: workOrdRepo,
		conversions: conversions, approvals: approvals, approvalRepo: approvalRepo,
		timesheets: timesheets, tsRepo: tsRepo, billing: billingSvc, billingRepo: billingRepo,
		maintenance: maintenance,
		sensorIngest: sensorIngest, sensorAlerts: sensorAlerts,
		notifications: notifications, hub: hub,
		rbacMiddleware: rbac.NewMiddleware(resolver, matrix, ClaimsFromContext, writeError),
	}
}

// Router builds the chi mux with the full middleware chain and route
// table described by SPEC_FULL §6.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))
	r.Use(Authenticate(s.tokens))
	r.Use(RateLimit(20, 40))
	r.Use(s.metricsMiddleware)
	r.Use(s.rbacMiddleware.Enforce)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/system/status", s.handleSystemStatus)

	r.Post("/auth/login", s.handleLogin)

	r.Route("/assets", func(r chi.Router) {
		r.Get("/", s.handleListAssets)
		r.Post("/", s.handleCreateAsset)
		r.Get("/{assetID}", s.handleGetAsset)
		r.Post("/{assetID}/transitions", s.handleTransitionAsset)
	})

	r.Route("/loans", func(r chi.Router) {
		r.Get("/", s.handleListLoans)
		r.Post("/", s.handleCreateLoan)
		r.Get("/{loanID}", s.handleGetLoan)
		r.Post("/{loanID}/approve", s.handleApproveLoan)
		r.Post("/{loanID}/reject", s.handleRejectLoan)
		r.Post("/{loanID}/checkout", s.handleCheckoutLoan)
		r.Post("/{loanID}/checkin", s.handleCheckinLoan)
	})

	r.Route("/rentals", func(r chi.Router) {
		r.Get("/", s.handleListRentals)
		r.Post("/", s.handleCreateRental)
		r.Get("/{rentalID}", s.handleGetRental)
		r.Post("/{rentalID}/approve", s.handleApproveRental)
		r.Post("/{rentalID}/reject", s.handleRejectRental)
		r.Post("/{rentalID}/dispatch", s.handleDispatchRental)
		r.Post("/{rentalID}/return", s.handleReturnRental)
	})

	r.Route("/work-orders", func(r chi.Router) {
		r.Get("/{workOrderID}", s.handleGetWorkOrder)
		r.Post("/{workOrderID}/approve", s.handleApproveWorkOrder)
		r.Post("/{workOrderID}/assign", s.handleAssignWorkOrder)
		r.Post("/{workOrderID}/start", s.handleStartWorkOrder)
		r.Post("/{workOrderID}/complete", s.handleCompleteWorkOrder)
		r.Post("/{workOrderID}/cancel", s.handleCancelWorkOrder)
		r.Get("/{workOrderID}/parts", s.handleListWorkOrderParts)
	})

	r.Route("/conversions", func(r chi.Router) {
		r.Post("/execute", s.handleExecuteConversion)
	})

	r.Route("/approvals", func(r chi.Router) {
		r.Post("/", s.handleCreateApproval)
		r.Get("/{approvalID}", s.handleGetApproval)
		r.Post("/{approvalID}/approve", s.handleApproveApproval)
		r.Post("/{approvalID}/reject", s.handleRejectApproval)
	})

	r.Route("/timesheets", func(r chi.Router) {
		r.Post("/", s.handleCreateTimesheet)
		r.Get("/{timesheetID}", s.handleGetTimesheet)
		r.Put("/{timesheetID}", s.handleEditTimesheet)
		r.Post("/{timesheetID}/submit", s.handleSubmitTimesheet)
		r.Post("/{timesheetID}/verify", s.handleVerifyTimesheet)
		r.Post("/{timesheetID}/approve", s.handleApproveTimesheet)
	})

	r.Route("/billing-periods", func(r chi.Router) {
		r.Get("/{periodID}", s.handleGetBillingPeriod)
		r.Post("/{periodID}/calculate", s.handleCalculateBillingPeriod)
		r.Post("/{periodID}/approve", s.handleApproveBillingPeriod)
		r.Post("/{periodID}/invoice", s.handleInvoiceBillingPeriod)
	})

	r.Route("/maintenance", func(r chi.Router) {
		r.Post("/", s.handleCreateMaintenance)
		r.Get("/{recordID}", s.handleGetMaintenance)
	})

	r.Route("/sensors", func(r chi.Router) {
		r.Post("/readings", s.handleIngestReading)
		r.Post("/alerts/{alertID}/acknowledge", s.handleAcknowledgeAlert)
		r.Post("/alerts/{alertID}/resolve", s.handleResolveAlert)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.handleListNotifications)
		r.Get("/unread", s.handleListUnreadNotifications)
		r.Get("/unread/count", s.handleCountUnread)
		r.Post("/{notificationID}/read", s.handleMarkRead)
		r.Post("/read-all", s.handleMarkAllRead)
		r.Delete("/{notificationID}", s.handleDeleteNotification)
	})
	r.Get("/ws", s.handleWebsocket)

	r.Route("/lookups", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)
		r.Get("/locations", s.handleListLocations)
		r.Get("/departments", s.handleListDepartments)
		r.Get("/vendors", s.handleListVendors)
		r.Get("/clients", s.handleListClients)
	})

	r.Get("/audit/{resourceType}/{resourceID}", s.handleListAuditLog)

	return r
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := chi.RouteContext(r.Context())
		pattern := r.URL.Path
		if route != nil && route.RoutePattern() != "" {
			pattern = route.RoutePattern()
		}
		status := fmt.Sprintf("%d", rec.status)
		s.metrics.ObserveHTTPRequest(pattern, r.Method, status, time.Since(start).Seconds())
	})
}
