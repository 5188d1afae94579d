package api

import (
	"net/http"
	"time"

	"miniblog/internal/api/handler"
	apimiddleware "miniblog/internal/api/middleware"
	"miniblog/internal/app/service"
	"miniblog/internal/common"
	"miniblog/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	postService *service.PostService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "server is working"})
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(authService)
	r.Route("/auth", authHandler.RegisterRoutes)

	// Post routes (bearer token required)
	postHandler := handler.NewPostHandler(postService)
	r.Route("/posts", func(posts chi.Router) {
		posts.Use(jwtauth.Verifier(security.TokenAuth)) // parses "Authorization: Bearer <token>"
		posts.Use(apimiddleware.Authenticator)
		postHandler.RegisterRoutes(posts)
	})

	return r
}
