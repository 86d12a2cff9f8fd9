package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/rozgar/internal/config"
	"github.com/garnizeh/rozgar/internal/coordinator"
	"github.com/garnizeh/rozgar/internal/geo"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, app *coordinator.Coordinator, feed *geo.Feed) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	appHandler := NewAppHandler(app, NewSessionTokens(cfg.SessionSecret, cfg.SessionDuration))
	deviceHandler := NewDeviceHandler(feed)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	// Onboarding runs before a session exists
	r.HandleFunc("/v1/onboarding", appHandler.GetView).Methods("GET")
	r.HandleFunc("/v1/onboarding/phone", appHandler.SubmitPhone).Methods("POST")
	r.HandleFunc("/v1/onboarding/role", appHandler.SelectRole).Methods("POST")
	r.HandleFunc("/v1/onboarding/name", appHandler.SubmitName).Methods("POST")
	r.HandleFunc("/v1/onboarding/name/dictate", appHandler.DictateName).Methods("POST")
	r.HandleFunc("/v1/onboarding/photo", appHandler.SubmitPhoto).Methods("POST")
	r.HandleFunc("/v1/onboarding/address", appHandler.SubmitAddress).Methods("POST")
	r.HandleFunc("/v1/onboarding/address/locate", appHandler.LocateAddress).Methods("POST")
	r.HandleFunc("/v1/onboarding/back", appHandler.Back).Methods("POST")

	// Device capabilities
	r.HandleFunc("/v1/device/location", deviceHandler.PushLocation).Methods("POST")
	r.HandleFunc("/v1/device/location/denied", deviceHandler.DenyLocation).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(SessionMiddleware(cfg.SessionSecret, app))

	apiV1.HandleFunc("/view", appHandler.GetView).Methods("GET")

	// Jobs endpoints
	apiV1.HandleFunc("/jobs", appHandler.PostJob).Methods("POST")
	apiV1.HandleFunc("/jobs/available", appHandler.ListAvailable).Methods("GET")
	apiV1.HandleFunc("/jobs/accepted", appHandler.ListAccepted).Methods("GET")
	apiV1.HandleFunc("/jobs/{id:[0-9]+}/accept", appHandler.AcceptJob).Methods("POST")
	apiV1.HandleFunc("/jobs/{id:[0-9]+}/reject", appHandler.RejectJob).Methods("POST")

	// Offer endpoints
	apiV1.HandleFunc("/offer", appHandler.CurrentOffer).Methods("GET")
	apiV1.HandleFunc("/offer/accept", appHandler.AcceptOffer).Methods("POST")
	apiV1.HandleFunc("/offer/decline", appHandler.DeclineOffer).Methods("POST")

	// Tracking endpoints
	apiV1.HandleFunc("/tracking", appHandler.TrackingState).Methods("GET")
	apiV1.HandleFunc("/tracking/share", appHandler.ShareLocation).Methods("POST")
	apiV1.HandleFunc("/tracking/reached", appHandler.Reached).Methods("POST")
	apiV1.HandleFunc("/tracking/leave", appHandler.LeaveTracking).Methods("POST")
	apiV1.HandleFunc("/tracking/{id:[0-9]+}", appHandler.OpenTracking).Methods("POST")

	// Profile endpoints
	apiV1.HandleFunc("/profile", appHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/profile", appHandler.UpdateProfile).Methods("PUT")
	apiV1.HandleFunc("/session/logout", appHandler.Logout).Methods("POST")

	return r
}
