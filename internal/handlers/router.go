package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

// Deps is what the HTTP layer needs from the rest of the process.
type Deps struct {
	Store     *store.Store
	Hub       *services.Hub
	Notifier  *services.Notifier
	Locations *services.LocationBroadcaster
	Gateway   *services.Gateway
	JWT       *utils.JWTManager
	Avatars   *services.AvatarStorage
	UploadDir string
	Logger    *slog.Logger
	Started   time.Time
}

// NewRouter builds the gin engine with every api route mounted.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger), gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}
	r.GET("/healthz", Health(d.Hub, d.Started))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", Register(d.Store, d.JWT))
			auth.POST("/login", Login(d.Store, d.JWT))
		}

		api.GET("/ws", WebSocketHandler(d.Gateway))

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(d.JWT))
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", GetProfile(d.Store))
				users.PUT("/profile", UpdateProfile(d.Store))
				users.POST("/avatar", UploadAvatar(d.Store, d.Avatars))
			}

			routes := protected.Group("/routes")
			{
				routes.GET("", ListRoutes(d.Store))
				routes.POST("", middleware.RequireRole(models.RoleDriver), CreateRoute(d.Store))
				routes.GET("/:id", GetRoute(d.Store))
				routes.PUT("/:id", UpdateRoute(d.Store, d.Notifier))
				routes.DELETE("/:id", DeleteRoute(d.Store))
				routes.GET("/:id/bookings", GetRouteBookings(d.Store))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", middleware.RequireRole(models.RoleCustomer), CreateBooking(d.Store, d.Notifier))
				bookings.GET("", ListBookings(d.Store))
				bookings.GET("/:id", GetBooking(d.Store))
				bookings.PUT("/:id/confirm", ConfirmBooking(d.Store, d.Notifier))
				bookings.PUT("/:id/reject", RejectBooking(d.Store, d.Notifier))
				bookings.PUT("/:id/cancel", CancelBooking(d.Store, d.Notifier))
				bookings.PUT("/:id/complete", CompleteBooking(d.Store, d.Notifier))
				bookings.DELETE("/:id", DeleteBooking(d.Store, d.Notifier))
			}

			conversations := protected.Group("/conversations")
			{
				conversations.GET("", ListConversations(d.Store))
				conversations.GET("/booking/:bookingId", GetBookingConversation(d.Store))
				conversations.GET("/:id/messages", GetMessages(d.Store))
				conversations.POST("/:id/messages", SendMessage(d.Store, d.Notifier))
				conversations.PUT("/:id/read", MarkConversationRead(d.Store))
			}

			location := protected.Group("/location")
			{
				location.POST("", middleware.RequireRole(models.RoleDriver), UpdateLocation(d.Locations))
				location.GET("/nearby-drivers", NearbyDrivers(d.Store))
				location.GET("/:userId", GetUserLocation(d.Store))
				location.GET("/:userId/history", GetLocationHistory(d.Store))
				location.DELETE("/:userId/history", ClearLocationHistory(d.Store))
			}

			protected.GET("/stats", GetStats(d.Store))
		}
	}

	return r
}
