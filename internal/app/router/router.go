package router

import (
	"github.com/gin-gonic/gin"

	authhandler "users_backend/internal/feature/auth/transport/handler"
	userhandler "users_backend/internal/feature/users/transport/handler"
	"users_backend/internal/platform/http/handler"
)

// NewRouter wires all HTTP routes.
// authRequired validates access tokens and re-checks that the user is still
// active; loginLimiter rate-limits the public authentication endpoints.
func NewRouter(authHandler *authhandler.AuthHandler, userHandler *userhandler.UserHandler,
	authRequired, loginLimiter gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// ログイン（トークンペア発行）
	r.POST("/auth/login", loginLimiter, authHandler.Login)
	// リフレッシュトークンによる再発行
	r.POST("/auth/refresh", loginLimiter, authHandler.Refresh)

	// 認証必須のルート
	users := r.Group("/users")
	users.Use(authRequired)
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.ListActive)

		users.GET("/me", userHandler.ReadCurrent)
		users.PATCH("/me/info", userHandler.UpdateCurrentInfo)
		users.PATCH("/me/login", userHandler.UpdateCurrentLogin)
		users.PATCH("/me/password", userHandler.UpdateCurrentPassword)

		users.GET("/by-login/:login", userHandler.ReadByLogin)
		users.GET("/elder-than/:age", userHandler.ListElderThan)

		users.GET("/by-guid/:guid", userHandler.ReadByGuid)
		users.PATCH("/by-guid/:guid/info", userHandler.UpdateInfo)
		users.PATCH("/by-guid/:guid/login", userHandler.UpdateLogin)
		users.PATCH("/by-guid/:guid/password", userHandler.UpdatePassword)
		users.PATCH("/by-guid/:guid/activate", userHandler.Reactivate)
		users.DELETE("/by-guid/:guid", userHandler.Delete)
	}

	return r
}
