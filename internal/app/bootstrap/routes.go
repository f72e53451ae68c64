// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apifeature "github.com/dalemusser/edulibrary/internal/app/features/api"
	errorsfeature "github.com/dalemusser/edulibrary/internal/app/features/errors"
	healthfeature "github.com/dalemusser/edulibrary/internal/app/features/health"
	homefeature "github.com/dalemusser/edulibrary/internal/app/features/home"
	libraryfeature "github.com/dalemusser/edulibrary/internal/app/features/library"
	loginfeature "github.com/dalemusser/edulibrary/internal/app/features/login"
	logoutfeature "github.com/dalemusser/edulibrary/internal/app/features/logout"
	themefeature "github.com/dalemusser/edulibrary/internal/app/features/theme"
	"github.com/dalemusser/edulibrary/internal/app/seed"
	"github.com/dalemusser/edulibrary/internal/app/store/audit"
	"github.com/dalemusser/edulibrary/internal/app/store/libraries"
	"github.com/dalemusser/edulibrary/internal/app/system/auditlog"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/dalemusser/edulibrary/internal/app/system/workers"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the per-session library
// registry from the seed catalog, starts the idle-library sweeper, and mounts
// the HTML and JSON surfaces behind session loading and CSRF protection.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	catalog, err := loadCatalog(appCfg.SeedFile)
	if err != nil {
		logger.Error("seed catalog load failed", zap.String("seed_file", appCfg.SeedFile), zap.Error(err))
		return nil, err
	}
	libs, err := libraries.New(catalog, logger)
	if err != nil {
		logger.Error("library registry init failed", zap.Error(err))
		return nil, err
	}
	logger.Info("seed catalog loaded", zap.Int("resources", len(catalog)))

	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	creds := auth.DefaultCredentials()

	csrfKey, err := csrfKey(appCfg.CSRFKey, secure, logger)
	if err != nil {
		return nil, err
	}

	// Nothing below can fail, so the worker never outlives a failed build.
	startLibraryEviction(workers.NewLibraryEviction(libs, logger, appCfg.LibrarySweepInterval, appCfg.LibraryIdleTimeout))

	r := chi.NewRouter()

	if appCfg.MetricsEnabled {
		r.Use(metrics.Middleware)
		r.Handle("/metrics", metrics.Handler())
	}

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, libs, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		if !secure {
			r.Use(plaintextHTTP)
		}
		r.Use(csrf.Protect(csrfKey,
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(csrfFailure(logger)),
		))

		homeHandler := homefeature.NewHandler(logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(sessionMgr, creds, errLog, auditLogger, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, libs, auditLogger, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		themeHandler := themefeature.NewHandler(secure)
		r.Mount("/theme", themefeature.Routes(themeHandler))

		// The library itself
		libraryHandler := libraryfeature.NewHandler(libs, errLog, auditLogger, logger)
		r.Mount("/library", libraryfeature.Routes(libraryHandler, sessionMgr))

		apiHandler := apifeature.NewHandler(sessionMgr, creds, libs, auditStore, auditLogger, logger)
		r.Mount("/api", apifeature.Routes(apiHandler, sessionMgr))
	})

	return r, nil
}

func loadCatalog(path string) ([]models.Resource, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.Load(path)
}

// csrfKey returns the configured key, or a per-process random one outside
// production. A random key invalidates tokens on restart.
func csrfKey(configured string, secure bool, logger *zap.Logger) ([]byte, error) {
	if configured != "" {
		if len(configured) < 32 {
			return nil, fmt.Errorf("csrf_key is too short (%d chars, need 32)", len(configured))
		}
		return []byte(configured)[:32], nil
	}
	if secure {
		return nil, errors.New("csrf_key is required in production")
	}
	logger.Warn("csrf_key not set; generated a per-process key")
	return securecookie.GenerateRandomKey(32), nil
}

// plaintextHTTP marks requests as plain HTTP so the CSRF origin check does
// not insist on https in local dev.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("csrf check failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(csrf.FailureReason(r)))

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid CSRF token"})
			return
		}
		if r.Header.Get("HX-Request") == "true" {
			http.Error(w, "Your form expired. Reload the page and try again.", http.StatusForbidden)
			return
		}
		errorsfeature.RenderForbidden(w, r, "Your form expired. Reload the page and try again.", "/library")
	})
}
