package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/analyses"
	googleauth "cvpilot-backend/internal/auth"
	"cvpilot-backend/internal/coverletters"
	"cvpilot-backend/internal/credits"
	"cvpilot-backend/internal/jobmatches"
	"cvpilot-backend/internal/optimizedcvs"
	"cvpilot-backend/internal/shared/config"
	"cvpilot-backend/internal/shared/server/middleware"
	"cvpilot-backend/internal/shared/server/respond"
	"cvpilot-backend/internal/uploads"
	"cvpilot-backend/internal/users"
)

// RouterDeps carries the handlers wired by bootstrap.
type RouterDeps struct {
	Config             config.Config
	UploadHandler      *uploads.Handler
	AnalysisHandler    *analyses.Handler
	CoverLetterHandler *coverletters.Handler
	JobMatchHandler    *jobmatches.Handler
	OptimizeHandler    *optimizedcvs.Handler
	CreditsHandler     *credits.Handler
	UsersHandler       *users.Handler
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.CoverLetterHandler != nil {
		deps.CoverLetterHandler.RegisterRoutes(api)
	}
	if deps.JobMatchHandler != nil {
		deps.JobMatchHandler.RegisterRoutes(api)
	}
	if deps.OptimizeHandler != nil {
		deps.OptimizeHandler.RegisterRoutes(api)
	}
	if deps.CreditsHandler != nil {
		deps.CreditsHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
