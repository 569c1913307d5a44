package app

import (
	"time"

	"codecounselor/internal/auth"
	"codecounselor/internal/config"
	"codecounselor/internal/llm"
	"codecounselor/internal/prompt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointRoot       = "/"
	EndPointHealth     = "/health"
	EndPointDebug      = "/debug"
	EndPointTestSimple = "/test-simple"
	EndPointChat       = "/chat"
	EndPointMetrics    = "/metrics"

	serviceName = "codecounselor"
)

// App represents the relay application with its router and the process-wide
// collaborators shared by every request.
type App struct {
	Router *gin.Engine
	Auth   *auth.Service

	cfg      *config.Config
	template *prompt.Template
	// service is nil when the upstream client could not be configured.
	service *llm.Service
	// limiter is nil when rate limiting is disabled.
	limiter *ipLimiter
}

// NewApp wires the router. completer may be nil, in which case every
// endpoint that needs the upstream fails fast.
func NewApp(cfg *config.Config, template *prompt.Template, completer llm.Completer) *App {
	a := &App{
		Router:   gin.New(),
		Auth:     auth.NewService(cfg.TokenSecret),
		cfg:      cfg,
		template: template,
		limiter:  newIPLimiter(cfg.RateLimitPerMinute, time.Minute),
	}
	if completer != nil {
		a.service = llm.NewService(completer, template, llm.SettingsFrom(cfg))
	}

	a.initializeRoutes()
	return a
}

func (a *App) initializeRoutes() {
	a.Router.Use(gin.Recovery())
	a.Router.Use(requestID())
	a.Router.Use(requestLogger())
	a.Router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", HeaderRequestID},
		AllowCredentials: !allowsAll(a.cfg.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	a.Router.GET(EndPointRoot, a.handleRoot)
	a.Router.GET(EndPointHealth, a.handleHealth)
	a.Router.GET(EndPointDebug, a.handleDebug)
	a.Router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	guarded := a.Router.Group("/")
	guarded.Use(a.Auth.Middleware())
	{
		guarded.POST(EndPointTestSimple, a.handleTestSimple)
		guarded.POST(EndPointChat, a.handleChat)
	}
}

// UpstreamConfigured reports whether chat requests can reach the provider.
func (a *App) UpstreamConfigured() bool {
	return a.service != nil
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
