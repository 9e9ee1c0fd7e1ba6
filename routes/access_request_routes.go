package routes

import (
	"matchfeed_server/controllers"
	"matchfeed_server/models"
	"matchfeed_server/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RegisterAccessRequestRoutes registers /api/photo-requests and /api/connections
func RegisterAccessRequestRoutes(api *mux.Router, requestService *services.AccessRequestService, logger *zap.Logger) {
	photo := &controllers.AccessRequestController{Requests: requestService, Kind: models.RequestKindPhoto, Logger: logger}
	photoRouter := api.PathPrefix("/photo-requests").Subrouter()
	photoRouter.HandleFunc("", photo.CreateRequest).Methods("POST")
	photoRouter.HandleFunc("/{requesterId}", photo.RespondToRequest).Methods("PATCH")

	connection := &controllers.AccessRequestController{Requests: requestService, Kind: models.RequestKindConnection, Logger: logger}
	connectionRouter := api.PathPrefix("/connections").Subrouter()
	connectionRouter.HandleFunc("", connection.CreateRequest).Methods("POST")
	connectionRouter.HandleFunc("/{requesterId}", connection.RespondToRequest).Methods("PATCH")
}
