package httpapi

import (
	"io"

	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Auth   AuthService
	Forms  FormService
	Images ImageService
	Store  Pinger
}

// NewRouter builds the gin engine serving the /api tree.
func NewRouter(cfg *config.Config, logger logging.Logger, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard

	engine := gin.New()
	engine.HandleMethodNotAllowed = false

	engine.Use(
		requestID(),
		requestLogger(logger),
		recovery(),
		corsPolicy(cfg.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression),
		bodyLimit(cfg.MaxBodyBytes),
	)

	h := &handlers{auth: d.Auth, forms: d.Forms, images: d.Images, store: d.Store}

	api := engine.Group("/api")
	api.GET("/health", h.health)

	auth := api.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)
	auth.GET("/me", authRequired(d.Auth), h.me)

	form := api.Group("/form", authRequired(d.Auth))
	form.GET("", h.getForm)
	form.GET("/step/:stepNumber", h.getStep)
	form.POST("/step", h.updateStep)
	form.POST("/submit", h.submit)
	form.POST("/profile-image", h.presignUpload)
	form.GET("/profile-image", h.presignDownload)

	engine.NoRoute(notFound)

	return engine
}
