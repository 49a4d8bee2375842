package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/case-framework/survey-editor-backend/pkg/apihelpers"
	editorsession "github.com/case-framework/survey-editor-backend/pkg/survey-editor/editor-session"
	newitem "github.com/case-framework/survey-editor-backend/pkg/survey-editor/new-item"
	"github.com/case-framework/survey-editor-backend/pkg/utils"
	"github.com/case-framework/survey-editor-backend/services/survey-editor-api/apihandlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	sessions := editorsession.NewManager(
		surveyDraftDBService,
		utils.ParseDurationOrDefault(conf.EditorConfig.SaveDelay, editorsession.DEFAULT_SAVE_DELAY),
	)

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.UserManagementConfig.ManagementUserJWTSignKey,
		surveyDraftDBService,
		sessions,
		newitem.NewItemFactory(nil),
		conf.AllowedInstanceIDs,
	)
	v1APIHandlers.AddSurveyEditorAPI(v1Root)

	if conf.GinConfig.DebugMode {
		if err := apihelpers.WriteRoutesToFile(router, "survey-editor-api-routes.txt"); err != nil {
			slog.Warn("could not write routes to file", slog.String("error", err.Error()))
		}
	}

	server := &http.Server{
		Addr:    ":" + conf.GinConfig.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Starting Survey Editor API on port " + conf.GinConfig.Port)
		var err error
		if !conf.GinConfig.MTLS.Use {
			err = server.ListenAndServe()
		} else {
			tlsConfig, tlsErr := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
			if tlsErr != nil {
				slog.Error("Error loading TLS config.", slog.String("error", tlsErr.Error()))
				os.Exit(1)
			}
			server.TLSConfig = tlsConfig
			err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Exited Survey Editor API", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down Survey Editor API")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Error during server shutdown", slog.String("error", err.Error()))
	}

	// open drafts are saved before the DB connection is closed
	if err := sessions.CloseAll(); err != nil {
		slog.Error("Not all survey drafts could be saved", slog.String("error", err.Error()))
	}
	if err := surveyDraftDBService.Disconnect(); err != nil {
		slog.Error("Error disconnecting from Study DB", slog.String("error", err.Error()))
	}
}
