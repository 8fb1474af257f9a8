package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/Asna-1994/ArticleSphere/docs" // swagger docs

	"github.com/Asna-1994/ArticleSphere/internal/assets"
	"github.com/Asna-1994/ArticleSphere/internal/cache"
	"github.com/Asna-1994/ArticleSphere/internal/config"
	"github.com/Asna-1994/ArticleSphere/internal/db"
	"github.com/Asna-1994/ArticleSphere/internal/handler"
	"github.com/Asna-1994/ArticleSphere/internal/live"
	"github.com/Asna-1994/ArticleSphere/internal/repository"
	"github.com/Asna-1994/ArticleSphere/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title ArticleSphere API
// @version 1.0
// @description Feed de noticias por preferencias (Mongo, Redis, JWT con refresh)
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	// Mongo y Redis
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	userRepo := repository.NewUserRepository()
	categoryRepo := repository.NewCategoryRepository()
	articleRepo := repository.NewArticleRepository()

	// asset store externo (Cloudinary)
	assetStore := assets.NewCloudinaryStore(cfg)

	// services
	authSvc := service.NewAuthService(userRepo, categoryRepo, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userSvc := service.NewUserService(userRepo, categoryRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	articleSvc := service.NewArticleService(articleRepo, userRepo, categoryRepo, assetStore)

	// hub de artículos en vivo (websockets + pub/sub de Redis)
	hub := live.NewHub()
	go hub.Run(context.Background())

	// handlers
	authH := handler.NewAuthHandler(authSvc, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userH := handler.NewUserHandler(userSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	articleH := handler.NewArticleHandler(articleSvc, assetStore)
	liveH := handler.NewLiveHandler(hub, userSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", handler.Health)

	r.Post("/api/auth/register", authH.Register)
	r.Post("/api/auth/login", authH.Login)
	// el coordinador de refresh del cliente pega acá con la cookie
	r.Post("/api/auth/refresh", authH.Refresh)

	r.Get("/api/categories", categoryH.List)
	r.Get("/api/categories/{id}", categoryH.Get)

	// detalle de artículo es público
	r.Get("/api/articles/{id}", articleH.Get)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	authMw := handler.JWTAuth(authSvc)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Post("/api/auth/logout", authH.Logout)
		r.Patch("/api/auth/password", authH.ChangePassword)

		r.Get("/api/users/profile", userH.GetProfile)
		r.Patch("/api/users/profile", userH.UpdateProfile)
		r.Patch("/api/users/preferences", userH.UpdatePreferences)

		r.Post("/api/categories", categoryH.Create)
		r.Patch("/api/categories/{id}", categoryH.Update)
		r.Delete("/api/categories/{id}", categoryH.Delete)

		r.Get("/api/articles", articleH.Feed)
		r.Get("/api/articles/user", articleH.GetUserArticles)
		r.Get("/api/articles/ws", liveH.Stream)
		r.Post("/api/articles", articleH.Create)
		r.Patch("/api/articles/{id}", articleH.Update)
		r.Delete("/api/articles/{id}", articleH.Delete)

		r.Post("/api/articles/{id}/like", articleH.Like)
		r.Post("/api/articles/{id}/dislike", articleH.Dislike)
		r.Post("/api/articles/{id}/block", articleH.Block)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
