package routes

import (
	"matchfeed_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterFeedRoutes sets up the feed route under /api/feed
func RegisterFeedRoutes(api *mux.Router, controller *controllers.FeedController, middleware ...mux.MiddlewareFunc) {
	feedRouter := api.PathPrefix("/feed").Subrouter()
	feedRouter.Use(middleware...)
	feedRouter.HandleFunc("", controller.GetFeed).Methods("GET")
}
