package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	referenceRepo "facilities/database/repository/reference"
	"facilities/models"
	"facilities/services/booking"
	"facilities/services/datetime"
	ai "facilities/services/intelligence"
	"facilities/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentHandler exposes the scheduling core to the voice agent layer.
// Domain outcomes are answered with 200 and a status discriminator; only
// malformed requests get a 4xx.
type AgentHandler struct {
	Normalizer   *datetime.Normalizer
	Availability *booking.AvailabilityService
	Executor     *booking.Executor
	WorkOrders   *booking.WorkOrderService
	Contexts     ai.ContextStore
	Detector     ai.ConfirmationDetector
	Reference    referenceRepo.ReferenceRepository
	Logger       *zap.Logger
}

func NewAgentHandler(
	normalizer *datetime.Normalizer,
	availability *booking.AvailabilityService,
	executor *booking.Executor,
	workOrders *booking.WorkOrderService,
	contexts ai.ContextStore,
	detector ai.ConfirmationDetector,
	reference referenceRepo.ReferenceRepository,
	logger *zap.Logger,
) *AgentHandler {
	return &AgentHandler{
		Normalizer:   normalizer,
		Availability: availability,
		Executor:     executor,
		WorkOrders:   workOrders,
		Contexts:     contexts,
		Detector:     detector,
		Reference:    reference,
		Logger:       logger,
	}
}

// ParseDateTimeHandler normalises a spoken date/time phrase.
func (h *AgentHandler) ParseDateTimeHandler(c *gin.Context) {
	var input struct {
		Text string `json:"text" binding:"required"`
		Zone string `json:"zone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Normalizer.Parse(input.Text, input.Zone))
}

// SuggestTimesHandler lists bookable times of day for a date.
func (h *AgentHandler) SuggestTimesHandler(c *gin.Context) {
	var input struct {
		Date string `json:"date" binding:"required"`
		Zone string `json:"zone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	suggestion, err := h.Normalizer.SuggestAppointmentTimes(input.Date, input.Zone)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  models.AvailabilityInvalid,
			"kind":    booking.InputError,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// CheckAvailabilityHandler answers "can someone come at ...".
func (h *AgentHandler) CheckAvailabilityHandler(c *gin.Context) {
	var input booking.AvailabilityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Availability.CheckAvailability(c.Request.Context(), input))
}

// AcceptAlternativeHandler records that the caller chose an offered alternative.
func (h *AgentHandler) AcceptAlternativeHandler(c *gin.Context) {
	var input struct {
		SessionID   string                   `json:"sessionId" binding:"required"`
		Alternative models.AlternativeSlot   `json:"alternative"`
		Considered  []models.AlternativeSlot `json:"considered"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	err := h.Availability.AcceptAlternative(c.Request.Context(), input.SessionID, input.Alternative, input.Considered)
	if errors.Is(err, ai.ErrContextNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": models.BookingNoContext, "message": "No booking in progress for this session."})
		return
	}
	if err != nil {
		h.Logger.Error("Failed to accept alternative", zap.String("sessionID", input.SessionID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": models.BookingInternalError, "message": "Could not record the chosen time. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.BookingSuccess, "message": "Alternative recorded."})
}

// DetectConfirmationHandler classifies one caller utterance.
func (h *AgentHandler) DetectConfirmationHandler(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Detector.Detect(input.Text))
}

// ExecuteBookingHandler commits the session's pending booking.
func (h *AgentHandler) ExecuteBookingHandler(c *gin.Context) {
	var input struct {
		SessionID        string `json:"sessionId" binding:"required"`
		ConfirmedInstant string `json:"confirmedInstant"`
		Utterance        string `json:"utterance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Executor.Execute(c.Request.Context(), input.SessionID, input.ConfirmedInstant, input.Utterance))
}

// CreateContextHandler starts (or restarts) a session's booking context.
func (h *AgentHandler) CreateContextHandler(c *gin.Context) {
	var input models.BookingContext
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.SessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "sessionId is required")
		return
	}
	if err := h.Contexts.Create(c.Request.Context(), input); err != nil {
		h.Logger.Error("Failed to create booking context", zap.String("sessionID", input.SessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking context", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": models.BookingSuccess, "sessionId": input.SessionID})
}

func (h *AgentHandler) GetContextHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	bc, err := h.Contexts.Get(c.Request.Context(), sessionID)
	if errors.Is(err, ai.ErrContextNotFound) {
		utils.JSONError(c, http.StatusNotFound, "booking context not found", sessionID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking context", err.Error())
		return
	}
	c.JSON(http.StatusOK, bc)
}

func (h *AgentHandler) ClearContextHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Contexts.Clear(c.Request.Context(), sessionID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to clear booking context", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// ListServicesHandler returns the service catalogue.
func (h *AgentHandler) ListServicesHandler(c *gin.Context) {
	services, err := h.Reference.ListServices(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list services", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// LookupCustomerHandler identifies a caller by phone or email and lists their properties.
func (h *AgentHandler) LookupCustomerHandler(c *gin.Context) {
	ctx := c.Request.Context()
	phone, email := c.Query("phone"), c.Query("email")

	var customer *models.Customer
	var err error
	switch {
	case phone != "":
		customer, err = h.Reference.FindCustomerByPhone(ctx, phone)
	case email != "":
		customer, err = h.Reference.FindCustomerByEmail(ctx, email)
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "phone or email is required")
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  models.AvailabilityUnknown,
			"message": "I couldn't find an account with those details.",
		})
		return
	}
	facilities, err := h.Reference.CustomerFacilities(ctx, customer.CustomerID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load properties", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     models.AvailabilitySuccess,
		"customer":   customer,
		"properties": facilities,
	})
}

func (h *AgentHandler) GetWorkOrderHandler(c *gin.Context) {
	wo, err := h.WorkOrders.GetWorkOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

func (h *AgentHandler) CustomerWorkOrdersHandler(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	orders, err := h.WorkOrders.CustomerWorkOrders(c.Request.Context(), c.Param("customerID"), activeOnly)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workOrders": orders, "count": len(orders)})
}

func (h *AgentHandler) UpdateWorkOrderStatusHandler(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
		Notify bool   `json:"notify"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	wo, err := h.WorkOrders.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status, input.Notes, input.Notify)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

// HealthHandler reports backend reachability from the last health check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "time": time.Now().Format(time.RFC3339)})
}

func (h *AgentHandler) writeBookingError(c *gin.Context, err error) {
	var be *booking.BookingError
	if !errors.As(err, &be) {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch be.Kind {
	case booking.InputError:
		status = http.StatusBadRequest
	case booking.NotFoundError:
		status = http.StatusNotFound
	case booking.ConflictError:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("Work order request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"status": be.Code, "kind": be.Kind, "message": be.Message})
}
