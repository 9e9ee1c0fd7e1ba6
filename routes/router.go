package routes

import (
	"net/http"
	"time"

	"matchfeed_server/controllers"
	"matchfeed_server/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP layer is built from.
// Limiter and Socket are optional.
type Dependencies struct {
	Feed           *services.FeedService
	Requests       *services.AccessRequestService
	Photos         *services.PhotoService
	Verifier       controllers.TokenVerifier
	Limiter        controllers.RateLimiter
	Socket         http.Handler
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter wires every route and middleware and wraps the result in CORS
func NewRouter(d Dependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(controllers.RequestIDMiddleware, controllers.LoggerMiddleware(d.Logger))

	RegisterRoutes(r)
	if d.Socket != nil {
		r.PathPrefix("/socket.io/").Handler(d.Socket)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(controllers.Authenticate(d.Verifier))

	var feedMiddleware []mux.MiddlewareFunc
	if d.Limiter != nil {
		feedMiddleware = append(feedMiddleware, controllers.RateLimit(d.Limiter, d.Logger))
	}
	RegisterFeedRoutes(api, &controllers.FeedController{
		Feed:    d.Feed,
		Timeout: d.RequestTimeout,
		Logger:  d.Logger,
	}, feedMiddleware...)
	RegisterAccessRequestRoutes(api, d.Requests, d.Logger)
	RegisterPhotoRoutes(api, d.Photos, d.Logger)

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", controllers.RequestIDHeader},
		ExposedHeaders:   []string{controllers.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(r)
}
