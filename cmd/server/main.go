package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"users_backend/internal/app/router"
	authhandler "users_backend/internal/feature/auth/transport/handler"
	authusecase "users_backend/internal/feature/auth/usecase"
	usersadapters "users_backend/internal/feature/users/adapters"
	userhandler "users_backend/internal/feature/users/transport/handler"
	usersusecase "users_backend/internal/feature/users/usecase"
	"users_backend/internal/platform/config"
	infradb "users_backend/internal/platform/db"
	"users_backend/internal/platform/hash"
	jwtmw "users_backend/internal/platform/jwt"
	"users_backend/internal/platform/ratelimit"
	infraredis "users_backend/internal/platform/redis"
)

func main() {
	// .envがあれば読み込む（本番環境では環境変数を直接設定）
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found, using process environment")
	}
	cfg := config.Load()

	// db
	db := infradb.OpenDB(cfg)

	hasher := hash.NewSha3Hasher()

	// ブートストラップ管理者のシード
	if err := infradb.SeedAdmin(db, hasher); err != nil {
		log.Fatalf("failed to seed bootstrap admin: %v", err)
	}

	// Redis（レートリミット用、無くても起動する）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg); err != nil {
		log.Println("[WARN] Redis unavailable. Running without rate limiting.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := usersadapters.NewUserGorm(db)

	// Usecase
	tokens := jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userUC := usersusecase.NewUserUsecase(userRepo, hasher)
	authUC := authusecase.NewAuthUsecase(userRepo, tokens, hasher)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	userH := userhandler.NewUserHandler(userUC)

	// ルータ生成
	r := router.NewRouter(authH, userH,
		jwtmw.AuthRequired(authUC),
		ratelimit.LoginLimiter(rdb, cfg))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
