package api

import (
	"github.com/gorilla/mux"

	"github.com/sitewise/sitewise-server/internal/api/recovery"
	"github.com/sitewise/sitewise-server/internal/auth"
	"github.com/sitewise/sitewise-server/internal/insights"
	"github.com/sitewise/sitewise-server/internal/services"
)

// Deps carries everything the router needs. run.go builds one from config.
type Deps struct {
	Users    *services.UserService
	Visits   *services.VisitService
	Receipts *services.ReceiptService
	Issues   *services.IssueService
	Reports  *services.ReportService
	Tokens   *auth.TokenIssuer
	Insights *insights.Client
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	authHandler := NewAuthHandler(d.Users)
	userHandler := NewUserHandler(d.Users)
	visitHandler := NewVisitHandler(d.Visits)
	receiptHandler := NewReceiptHandler(d.Receipts)
	issueHandler := NewIssueHandler(d.Issues)
	reportHandler := NewReportHandler(d.Reports)
	generateHandler := NewGenerateHandler(d.Insights)

	// Unauthenticated endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	// Everything else requires a valid bearer token.
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(authMiddleware(d.Tokens))

	authed.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	// User management
	authed.HandleFunc("/users", requireCapability(auth.CapManageUsers, userHandler.CreateUser)).Methods("POST")
	authed.HandleFunc("/users", requireCapability(auth.CapManageUsers, userHandler.ListUsers)).Methods("GET")
	authed.HandleFunc("/users/{userId}", requireCapability(auth.CapManageUsers, userHandler.GetUser)).Methods("GET")
	authed.HandleFunc("/users/{userId}", requireCapability(auth.CapManageUsers, userHandler.UpdateUser)).Methods("PATCH")
	authed.HandleFunc("/users/{userId}", requireCapability(auth.CapManageUsers, userHandler.DeleteUser)).Methods("DELETE")
	authed.HandleFunc("/users/{userId}/password", requireCapability(auth.CapManageUsers, userHandler.SetPassword)).Methods("PUT")

	// Visit log
	authed.HandleFunc("/visits/import", requireCapability(auth.CapImportData, visitHandler.ImportCSV)).Methods("POST")
	authed.HandleFunc("/visits/export", requireCapability(auth.CapViewReports, visitHandler.ExportCSV)).Methods("GET")
	authed.HandleFunc("/visits", requireCapability(auth.CapImportData, visitHandler.CreateVisit)).Methods("POST")
	authed.HandleFunc("/visits", requireCapability(auth.CapViewReports, visitHandler.ListVisits)).Methods("GET")
	authed.HandleFunc("/visits", requireCapability(auth.CapImportData, visitHandler.ClearVisits)).Methods("DELETE")
	authed.HandleFunc("/visits/{visitId:[0-9a-fA-F-]{36}}", requireCapability(auth.CapViewReports, visitHandler.GetVisit)).Methods("GET")

	// Delivery receipts
	authed.HandleFunc("/receipts/import", requireCapability(auth.CapImportData, receiptHandler.ImportCSV)).Methods("POST")
	authed.HandleFunc("/receipts/export", requireCapability(auth.CapViewReports, receiptHandler.ExportCSV)).Methods("GET")
	authed.HandleFunc("/receipts", requireCapability(auth.CapImportData, receiptHandler.CreateReceipt)).Methods("POST")
	authed.HandleFunc("/receipts", requireCapability(auth.CapViewReports, receiptHandler.ListReceipts)).Methods("GET")
	authed.HandleFunc("/receipts", requireCapability(auth.CapImportData, receiptHandler.ClearReceipts)).Methods("DELETE")

	// Issues
	authed.HandleFunc("/issues", requireCapability(auth.CapManageIssues, issueHandler.CreateIssue)).Methods("POST")
	authed.HandleFunc("/issues", requireCapability(auth.CapViewReports, issueHandler.ListIssues)).Methods("GET")
	authed.HandleFunc("/issues/{issueId}", requireCapability(auth.CapViewReports, issueHandler.GetIssue)).Methods("GET")
	authed.HandleFunc("/issues/{issueId}", requireCapability(auth.CapManageIssues, issueHandler.DeleteIssue)).Methods("DELETE")
	authed.HandleFunc("/issues/{issueId}/comments", requireCapability(auth.CapManageIssues, issueHandler.AddComment)).Methods("POST")
	authed.HandleFunc("/issues/{issueId}/status", requireCapability(auth.CapManageIssues, issueHandler.SetStatus)).Methods("PUT")
	authed.HandleFunc("/issues/{issueId}/analyze", requireCapability(auth.CapRunAnalysis, issueHandler.Analyze)).Methods("POST")

	// Reports
	authed.HandleFunc("/reports/overview", requireCapability(auth.CapViewReports, reportHandler.Overview)).Methods("GET")
	authed.HandleFunc("/reports/visit-summary", requireCapability(auth.CapViewReports, reportHandler.VisitSummary)).Methods("GET")
	authed.HandleFunc("/reports/visit-summary/export", requireCapability(auth.CapViewReports, reportHandler.ExportVisitSummary)).Methods("GET")
	authed.HandleFunc("/reports/person-projects", requireCapability(auth.CapViewReports, reportHandler.PersonProjects)).Methods("GET")
	authed.HandleFunc("/reports/person-projects/export", requireCapability(auth.CapViewReports, reportHandler.ExportPersonProjects)).Methods("GET")
	authed.HandleFunc("/reports/delivery-coverage", requireCapability(auth.CapViewReports, reportHandler.DeliveryCoverage)).Methods("GET")
	authed.HandleFunc("/reports/delivery-coverage/export", requireCapability(auth.CapViewReports, reportHandler.ExportDeliveryCoverage)).Methods("GET")

	// Analysis proxy
	authed.HandleFunc("/gemini/generateContent", requireCapability(auth.CapRunAnalysis, generateHandler.Generate)).Methods("POST")

	return router
}
