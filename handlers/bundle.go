package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Date and time endpoints
	ParseDateTimeHandler gin.HandlerFunc
	SuggestTimesHandler  gin.HandlerFunc

	// Availability endpoints
	CheckAvailabilityHandler gin.HandlerFunc
	AcceptAlternativeHandler gin.HandlerFunc
	ListServicesHandler      gin.HandlerFunc
	LookupCustomerHandler    gin.HandlerFunc

	// Booking endpoints
	DetectConfirmationHandler gin.HandlerFunc
	ExecuteBookingHandler     gin.HandlerFunc

	// Booking context endpoints
	CreateContextHandler gin.HandlerFunc
	GetContextHandler    gin.HandlerFunc
	ClearContextHandler  gin.HandlerFunc

	// Work order endpoints
	GetWorkOrderHandler          gin.HandlerFunc
	CustomerWorkOrdersHandler    gin.HandlerFunc
	UpdateWorkOrderStatusHandler gin.HandlerFunc
}

// NewHandlerBundle wires every endpoint to h.
func NewHandlerBundle(h *AgentHandler) *HandlerBundle {
	return &HandlerBundle{
		ParseDateTimeHandler: h.ParseDateTimeHandler,
		SuggestTimesHandler:  h.SuggestTimesHandler,

		CheckAvailabilityHandler: h.CheckAvailabilityHandler,
		AcceptAlternativeHandler: h.AcceptAlternativeHandler,
		ListServicesHandler:      h.ListServicesHandler,
		LookupCustomerHandler:    h.LookupCustomerHandler,

		DetectConfirmationHandler: h.DetectConfirmationHandler,
		ExecuteBookingHandler:     h.ExecuteBookingHandler,

		CreateContextHandler: h.CreateContextHandler,
		GetContextHandler:    h.GetContextHandler,
		ClearContextHandler:  h.ClearContextHandler,

		GetWorkOrderHandler:          h.GetWorkOrderHandler,
		CustomerWorkOrdersHandler:    h.CustomerWorkOrdersHandler,
		UpdateWorkOrderStatusHandler: h.UpdateWorkOrderStatusHandler,
	}
}
