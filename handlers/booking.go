package handlers

import (
	"errors"
	"net/http"

	auditlogRepo "roomlift/database/repository/auditlog"
	bookingRepo "roomlift/database/repository/booking"
	"roomlift/services/booking"
	"roomlift/services/lifecycle"
	"roomlift/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking lifecycle workflow over HTTP.
type BookingHandler struct {
	Workflow booking.WorkflowService
	AuditLog auditlogRepo.AuditLogRepository
}

func NewBookingHandler(workflow booking.WorkflowService, auditLog auditlogRepo.AuditLogRepository) *BookingHandler {
	return &BookingHandler{Workflow: workflow, AuditLog: auditLog}
}

// CreateBooking submits a new booking request. The response status may
// already be Approved when the auto-approval guards pass.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, status, err := h.Workflow.CreateBooking(c.Request.Context(), input)
	if err != nil {
		var wfErr *booking.WorkflowError
		if errors.As(err, &wfErr) && wfErr.Code == "validationError" {
			utils.JSONError(c, http.StatusBadRequest, "invalid booking request", wfErr.Message)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking": b,
		"status":  status,
	})
}

// DispatchEvent delivers one lifecycle event. Events the current state does
// not accept are not errors; the unchanged status comes back with 200 so UI
// code can dispatch optimistically.
func (h *BookingHandler) DispatchEvent(c *gin.Context) {
	bookingID := c.Param("id")
	event := lifecycle.Event(c.Param("event"))

	actor := c.GetString("actorEmail")
	if actor == "" {
		actor = "system"
	}

	status, err := h.Workflow.DispatchEvent(c.Request.Context(), bookingID, event, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotFound):
			utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
		case isWorkflowCode(err, "legacyRecordError"):
			utils.JSONError(c, http.StatusConflict, "booking predates the lifecycle engine", bookingID)
		case isWorkflowCode(err, "conflictError"):
			utils.JSONError(c, http.StatusConflict, "booking is being updated concurrently", bookingID)
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to dispatch event", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookingId": bookingID,
		"status":    status,
	})
}

// Status returns the display status label for a booking.
func (h *BookingHandler) Status(c *gin.Context) {
	bookingID := c.Param("id")
	status, err := h.Workflow.Status(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to resolve status", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": bookingID,
		"status":    status,
	})
}

// Actions lists the lifecycle events the booking currently accepts.
func (h *BookingHandler) Actions(c *gin.Context) {
	bookingID := c.Param("id")
	actions, err := h.Workflow.AvailableActions(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to list actions", err.Error())
		return
	}
	if actions == nil {
		actions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": bookingID,
		"actions":   actions,
	})
}

// Log returns the append-only transition log for a booking.
func (h *BookingHandler) Log(c *gin.Context) {
	bookingID := c.Param("id")
	entries, err := h.AuditLog.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking log", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": bookingID,
		"entries":   entries,
	})
}

func isWorkflowCode(err error, code string) bool {
	var wfErr *booking.WorkflowError
	return errors.As(err, &wfErr) && wfErr.Code == code
}
