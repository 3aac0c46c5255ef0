package server

import (
	"net/http"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/realtime"
	httpHandler "github.com/Jhoseto/factcheckerAI-sub002/interfaces/http"
	"github.com/Jhoseto/factcheckerAI-sub002/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	auditHandler httpHandler.IAuditHandler,
	ledgerHandler httpHandler.ILedgerHandler,
	archiveHandler httpHandler.IArchiveHandler,
	progressHub *realtime.Hub,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://factchecker.bg", "https://admin.factchecker.bg", "http://localhost:4200", "https://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origin == "https://factchecker.bg" || origin == "https://admin.factchecker.bg" || origin == "http://localhost:4200" || origin == "https://localhost:4200"
		},
		MaxAge: 12 * time.Hour,
	}))

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)

	router.POST("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.PUT("/audit/reference", auditHandler.UpdateReference)
	api.GET("/audit/estimate", auditHandler.GetEstimate)
	api.POST("/audit/submit", auditHandler.Submit)
	api.GET("/audit/state", auditHandler.GetState)
	api.GET("/audit/stream", progressHub.Serve)

	api.GET("/ledger", ledgerHandler.GetFeed)
	api.GET("/ledger/summary", ledgerHandler.GetSummary)

	api.GET("/archive", archiveHandler.List)
	api.POST("/archive", archiveHandler.Save)
	api.GET("/archive/:id", archiveHandler.GetById)

	api.GET("/balance", userHandler.GetBalance)
	api.POST("/balance/refresh", userHandler.RefreshBalance)

	return router
}
