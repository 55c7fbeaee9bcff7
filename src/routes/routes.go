package routes

import (
	"context"
	"net/http"
	"time"

	"notes-app/src/config"
	"notes-app/src/interface/handler"
	"notes-app/src/middleware"
	"notes-app/src/service"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether the note store is reachable
type HealthChecker func(ctx context.Context) error

// Dependencies holds everything the router wires together
type Dependencies struct {
	Config      *config.Config
	NoteHandler *handler.NoteHandler
	AuthHandler *handler.AuthHandler
	AuthService service.AuthService
	Health      HealthChecker
}

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// エスケープされた "/" をIDの一部として扱う
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(deps.Config.CORS))

	r.GET("/health", healthHandler(deps.Health))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(deps.Config.RateLimit))

	// 認証API
	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register) // POST /api/auth/register
		auth.POST("/login", deps.AuthHandler.Login)       // POST /api/auth/login
		auth.GET("/me", middleware.AuthMiddleware(deps.AuthService), deps.AuthHandler.Me)
	}

	// 認証が必要なノートAPIルート
	notes := api.Group("/notes")
	notes.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		notes.GET("", deps.NoteHandler.ListNotes)       // GET /api/notes
		notes.GET("/trash", deps.NoteHandler.ListTrash) // GET /api/notes/trash
		notes.POST("", deps.NoteHandler.CreateNote)     // POST /api/notes
		notes.GET("/:id", deps.NoteHandler.GetNote)
		notes.PUT("/:id", deps.NoteHandler.UpdateNote)
		notes.DELETE("/:id", deps.NoteHandler.DeleteNote)

		// ゴミ箱とお気に入りの操作
		notes.PATCH("/:id/favorite", deps.NoteHandler.ToggleFavorite)
		notes.PATCH("/:id/restore", deps.NoteHandler.RestoreNote)
		notes.DELETE("/:id/permanent", deps.NoteHandler.PermanentlyDeleteNote)
	}
}

func healthHandler(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
