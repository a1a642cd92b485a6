package app

import (
	"net/http"
	"time"

	"go-pos-report/internal/handlers"
	"go-pos-report/internal/logger"
	"go-pos-report/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators the HTTP routes need. Nil Files or
// Assistant leave their routes unregistered.
type RouterDeps struct {
	Logger            *zap.Logger
	Tokens            middleware.TokenValidator
	Issuer            handlers.TokenIssuer
	Users             handlers.UserRepository
	Reports           handlers.ReportGenerator
	Files             handlers.FileOpener
	Assistant         handlers.Assistant
	PrivilegedRole    string
	AllowRegistration bool
	RegistrationRole  string
	CORSAllowOrigins  []string
}

// Deps exposes the app's components to NewRouter.
func (a *App) Deps() RouterDeps {
	d := RouterDeps{
		Logger:            a.Logger,
		Tokens:            a.Tokens,
		Issuer:            a.Tokens,
		Users:             a.Users,
		Reports:           a.Reports,
		PrivilegedRole:    a.Config.Report.PrivilegedRole,
		AllowRegistration: a.Config.App.AllowRegistration,
		RegistrationRole:  a.Config.App.RegistrationRole,
		CORSAllowOrigins:  a.Config.App.CORSAllowOrigins,
	}
	// Assigning typed nil pointers would make the interfaces non-nil.
	if a.Files != nil {
		d.Files = a.Files
	}
	if a.Assistant != nil {
		d.Assistant = a.Assistant
	}
	return d
}

func NewRouter(d RouterDeps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))
	if len(d.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSAllowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })

	authHandler := handlers.NewAuthHandler(d.Users, d.Issuer, d.RegistrationRole)
	r.POST("/login", authHandler.Login)
	if d.AllowRegistration {
		r.POST("/register", authHandler.Register)
		log.Warn("registration route is OPEN, disable it in production")
	}

	if d.Files != nil {
		r.GET("/files/*key", handlers.NewFileHandler(d.Files).Download)
	}

	api := r.Group("/api")
	api.Use(middleware.Authenticate(d.Tokens))
	{
		// The report pipeline answers unauthenticated callers itself.
		api.POST("/reports/daily", handlers.NewReportHandler(d.Reports).GenerateDaily)

		if d.Assistant != nil {
			api.POST("/assistant",
				middleware.RequireAuth(),
				middleware.RequireRole(d.PrivilegedRole),
				handlers.NewAIHandler(d.Assistant).Ask)
		}
	}

	return r
}
