package routes

import (
	"roomlift/handlers"
	"roomlift/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", h.CreateBooking)               // Submit a booking request
		bookings.GET("/:id/status", h.Status)            // Resolve display status
		bookings.GET("/:id/actions", h.Actions)          // Events currently accepted
	}

	staff := r.Group("/api/bookings", middleware.StaffAuthMiddleware())
	{
		staff.POST("/:id/events/:event", h.DispatchEvent) // Dispatch a lifecycle event
		staff.GET("/:id/log", h.Log)                      // Transition audit log
	}
}
