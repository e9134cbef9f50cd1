// Package routers assembles the gin engine.
package routers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"talkie/server/backend/auth"
	"talkie/server/backend/completions"
	"talkie/server/backend/providers"
	"talkie/server/backend/socket"
	"talkie/server/backend/storage"
	"talkie/server/handlers"
	"talkie/server/models"
)

// Deps is everything the routes need. Media and Lister may be nil when the
// matching provider is not configured.
type Deps struct {
	DB           *gorm.DB
	Auth         *auth.Service
	Relay        *completions.Relay
	Hub          *socket.Hub
	Media        providers.Media
	Lister       providers.ModelLister
	Store        *storage.FileStore
	SpeechFile   string
	DefaultModel models.ModelRef
	StaticDir    string
	Logger       *slog.Logger
}

// NewEngine builds the engine with middleware and every route.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(handlers.RequestID(), handlers.Recovery(d.Logger), handlers.Logging(d.Logger), handlers.CORS())
	RegisterBackendRoutes(r, d)
	return r
}

// RegisterBackendRoutes 挂载全部业务路由。
// Public routes first, then the token protected group, then the client.
func RegisterBackendRoutes(r *gin.Engine, d Deps) {
	public := r.Group("/")
	private := r.Group("/", auth.RequireToken(d.Auth))

	public.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sockets": d.Hub.Count()})
	})
	public.GET("/ws", gin.WrapH(d.Hub))

	handlers.RegisterAuthRoutes(public, private, d.Auth)
	handlers.RegisterCompletionRoutes(private, d.Relay, d.DefaultModel)
	handlers.RegisterMediaRoutes(public, private, handlers.MediaDeps{
		DB:         d.DB,
		Media:      d.Media,
		Store:      d.Store,
		SpeechFile: d.SpeechFile,
		Logger:     d.Logger,
	})
	handlers.RegisterConversationRoutes(private, d.DB)
	handlers.RegisterSettingsRoutes(private, d.DB)
	handlers.RegisterModelRoutes(public, d.Lister, d.Logger)
	handlers.RegisterStaticRoutes(r, d.StaticDir)
}
