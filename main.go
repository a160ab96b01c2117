package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"evote-portal/internal"
)

func main() {
	_ = godotenv.Load()

	upstream := os.Getenv("UPSTREAM_API_URL")
	if upstream == "" {
		slog.Error("UPSTREAM_API_URL is required")
		os.Exit(1)
	}
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		slog.Error("SESSION_SECRET is required")
		os.Exit(1)
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./static"
	}
	pollInterval := 10 * time.Second
	if v := os.Getenv("RESULTS_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("bad RESULTS_POLL_INTERVAL", "value", v, "error", err)
			os.Exit(1)
		}
		pollInterval = d
	}
	secure := os.Getenv("COOKIE_SECURE") == "1"

	api := internal.NewClient(upstream)
	sessions := internal.NewSessionManager(secret, secure)

	poller := internal.NewPoller(api.LiveResults, pollInterval)
	poller.Start(context.Background())
	defer poller.Stop()

	r := gin.New()
	r.Use(gin.Recovery())

	// Page routes, gated by the cookie guard
	guard := internal.RouteGuard()
	r.Static("/assets", filepath.Join(staticDir, "assets"))
	pages := map[string]string{
		"/":                    "index.html",
		"/login":               "login.html",
		"/accredit":            "accredit.html",
		"/dashboard":           "dashboard.html",
		"/vote":                "vote.html",
		"/results":             "results.html",
		"/admin":               "admin/index.html",
		"/admin/accreditation": "admin/accreditation.html",
		"/admin/candidates":    "admin/candidates.html",
		"/admin/positions":     "admin/positions.html",
		"/admin/results":       "admin/results.html",
	}
	for route, file := range pages {
		target := filepath.Join(staticDir, file)
		r.GET(route, guard, func(c *gin.Context) { c.File(target) })
	}

	portal := r.Group("/portal", internal.RequestLog())
	{
		auth := portal.Group("/auth")
		auth.POST("/register", internal.RegisterHandler(api))
		auth.POST("/login", internal.LoginHandler(api, sessions))
		auth.POST("/admin/login", internal.AdminLoginHandler(api, sessions))
		auth.POST("/logout", internal.LogoutHandler(sessions))

		portal.GET("/health", internal.HealthHandler(api))

		me := portal.Group("/me", internal.RequireSession(sessions))
		me.GET("", internal.MeHandler(api))
		me.GET("/status", internal.AccreditationStatusHandler(api))

		vote := portal.Group("/vote", internal.RequireSession(sessions))
		vote.GET("/booth", internal.BoothHandler(api))
		vote.POST("/cast", internal.CastVoteHandler(api))
		vote.GET("/results", internal.LiveResultsHandler(api))
		vote.GET("/results/stream", internal.ResultsStreamHandler(poller))
		vote.GET("/approved-voters", internal.ApprovedVotersHandler(api))

		admin := portal.Group("/admin", internal.RequireSession(sessions), internal.RequireAdmin())
		admin.GET("/stats", internal.StatsHandler(api))
		admin.GET("/election/current", internal.CurrentElectionHandler(api))
		admin.POST("/election/start", internal.StartElectionHandler(api))
		admin.POST("/election/end", internal.EndElectionHandler(api))
		admin.GET("/accreditation/pending", internal.PendingAccreditationHandler(api))
		admin.PUT("/accreditation/:id/approve", internal.ApproveVoterHandler(api))
		admin.PUT("/accreditation/:id/reject", internal.RejectVoterHandler(api))
		admin.GET("/candidates", internal.CandidatesHandler(api))
		admin.POST("/candidates", internal.AddCandidateHandler(api))
		admin.GET("/positions", internal.PositionsHandler(api))
		admin.POST("/positions", internal.AddPositionHandler(api))
		admin.GET("/positions/staged", internal.StagedPositionsHandler(api))
		admin.GET("/elections", internal.ElectionsHandler(api))
		admin.GET("/elections/:id", internal.ElectionDetailsHandler(api))
		admin.GET("/results", internal.AdminResultsHandler(api))
		admin.GET("/results/export.csv", internal.ExportCSVHandler(api))
		admin.GET("/results/report", internal.ExportReportHandler(api))
		admin.GET("/activities", internal.ActivitiesHandler(api))
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	slog.Info("Listening", "port", port, "upstream", upstream)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}
