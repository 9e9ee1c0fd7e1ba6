package routes

import (
	"matchfeed_server/controllers"
	"matchfeed_server/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RegisterPhotoRoutes registers the viewer's photo routes under /api/profile/photos
func RegisterPhotoRoutes(api *mux.Router, photoService *services.PhotoService, logger *zap.Logger) {
	controller := &controllers.PhotoController{Photos: photoService, Logger: logger}

	photoRouter := api.PathPrefix("/profile/photos").Subrouter()
	photoRouter.HandleFunc("", controller.AddPhoto).Methods("POST")
	photoRouter.HandleFunc("", controller.DeletePhoto).Methods("DELETE")
	photoRouter.HandleFunc("/primary", controller.SetProfilePhoto).Methods("PUT")
}
