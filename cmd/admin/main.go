// Command admin runs the secondary ops surface: process health, system
// status, and the audit-relevant security log, kept on a separate port and
// a separate router (gin) from the main chi-routed API (SPEC_FULL §4.15).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assetledger/backend/internal/config"
	"github.com/assetledger/backend/internal/database"
	"github.com/assetledger/backend/internal/logging"
	"github.com/assetledger/backend/internal/sysstatus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New("assetledger-admin", cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.WithFields(nil).WithError(err).Fatal("connect to database")
	}
	defer db.Close()

	status := sysstatus.NewReporter(db)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/system/status", func(c *gin.Context) {
		snap, err := status.Collect(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Admin.Host, cfg.Admin.Port)
	log.WithFields(map[string]interface{}{"addr": addr}).Info("admin server starting")
	if err := router.Run(addr); err != nil {
		log.WithFields(nil).WithError(err).Fatal("admin server failed")
	}
}
