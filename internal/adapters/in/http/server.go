package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/notifications"
	"orderflow/internal/pkg/errs"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler    commands.CreateOrderCommandHandler
	transitionHandler     commands.RequestOrderTransitionCommandHandler
	assignHandler         commands.AssignDeliveryPersonCommandHandler
	archiveHandler        commands.ArchiveOrderCommandHandler
	verifyReceiptHandler  commands.VerifyReceiptCommandHandler
	updateLocationHandler commands.UpdateDeliveryLocationCommandHandler
	registerHookHandler   commands.RegisterWebhookSubscriptionCommandHandler

	// Query handlers
	getOrderHandler   queries.GetOrderQueryHandler
	listOrdersHandler queries.ListOrdersQueryHandler

	hub    *notifications.Hub
	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query
// handlers and the notification hub backing the websocket endpoint.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	transitionHandler commands.RequestOrderTransitionCommandHandler,
	assignHandler commands.AssignDeliveryPersonCommandHandler,
	archiveHandler commands.ArchiveOrderCommandHandler,
	verifyReceiptHandler commands.VerifyReceiptCommandHandler,
	updateLocationHandler commands.UpdateDeliveryLocationCommandHandler,
	registerHookHandler commands.RegisterWebhookSubscriptionCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
	hub *notifications.Hub,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		createOrderHandler:    createOrderHandler,
		transitionHandler:     transitionHandler,
		assignHandler:         assignHandler,
		archiveHandler:        archiveHandler,
		verifyReceiptHandler:  verifyReceiptHandler,
		updateLocationHandler: updateLocationHandler,
		registerHookHandler:   registerHookHandler,
		getOrderHandler:       getOrderHandler,
		listOrdersHandler:     listOrdersHandler,
		hub:                   hub,
		logger:                logger.With("component", "http_server"),
	}
}

// RegisterRoutes attaches all routes to the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewRequestValidator()

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/transition", s.RequestTransition)
	api.POST("/orders/:id/assign", s.AssignDeliveryPerson)
	api.POST("/orders/:id/archive", s.ArchiveOrder)
	api.POST("/orders/:id/receipt", s.VerifyReceipt)
	api.PUT("/orders/:id/location", s.UpdateDeliveryLocation)
	api.POST("/webhooks", s.RegisterWebhookSubscription)

	e.GET("/ws", s.HandleWebSocket)
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type createOrderRequest struct {
	ID            int64  `json:"id" validate:"required,gt=0"`
	CustomerID    *int64 `json:"customerId" validate:"omitempty,gt=0"`
	Total         string `json:"total" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card transfer"`
}

type transitionRequest struct {
	ToStatus string `json:"toStatus" validate:"required"`
	// Actor is a role name or a username; the history records it verbatim.
	Actor            string `json:"actor" validate:"required,max=64"`
	DeliveryPersonID *int64 `json:"deliveryPersonId" validate:"omitempty,gt=0"`
	Note             string `json:"note" validate:"max=500"`
}

type assignRequest struct {
	DeliveryPersonID int64 `json:"deliveryPersonId" validate:"required,gt=0"`
}

type webhookSubscriptionRequest struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	URL       string `json:"url" validate:"required,url"`
	EventType string `json:"eventType" validate:"required,max=64"`
	Secret    string `json:"secret" validate:"required,max=256"`
}

type locationRequest struct {
	Lat            *float64  `json:"lat" validate:"required"`
	Lng            *float64  `json:"lng" validate:"required"`
	AccuracyMeters float64   `json:"accuracyMeters" validate:"gte=0"`
	CapturedAt     time.Time `json:"capturedAt" validate:"required"`
}

// CreateOrder handles POST /api/v1/orders - registers a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req createOrderRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		return badRequest(ctx, "Invalid total: "+err.Error())
	}

	cmd, err := commands.NewCreateOrderCommand(req.ID, req.CustomerID, total, order.PaymentMethod(req.PaymentMethod))
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusCreated)
}

// RequestTransition handles POST /api/v1/orders/:id/transition.
func (s *Server) RequestTransition(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req transitionRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	toStatus, err := order.ParseStatus(req.ToStatus)
	if err != nil {
		return badRequest(ctx, "Unknown status: "+req.ToStatus)
	}

	cmd, err := commands.NewRequestOrderTransitionCommand(orderID, toStatus, req.Actor, req.DeliveryPersonID, req.Note)
	if err != nil {
		return badRequest(ctx, "Invalid transition data: "+err.Error())
	}

	if handleErr := s.transitionHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AssignDeliveryPerson handles POST /api/v1/orders/:id/assign.
func (s *Server) AssignDeliveryPerson(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req assignRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAssignDeliveryPersonCommand(orderID, req.DeliveryPersonID)
	if err != nil {
		return badRequest(ctx, "Invalid assignment data: "+err.Error())
	}

	if handleErr := s.assignHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ArchiveOrder handles POST /api/v1/orders/:id/archive.
func (s *Server) ArchiveOrder(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewArchiveOrderCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	if handleErr := s.archiveHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// VerifyReceipt handles POST /api/v1/orders/:id/receipt.
func (s *Server) VerifyReceipt(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewVerifyReceiptCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	if handleErr := s.verifyReceiptHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateDeliveryLocation handles PUT /api/v1/orders/:id/location.
func (s *Server) UpdateDeliveryLocation(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req locationRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	point, err := kernel.NewGeoPoint(*req.Lat, *req.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	sample, err := kernel.NewLocationSample(point, req.AccuracyMeters, req.CapturedAt)
	if err != nil {
		return badRequest(ctx, "Invalid location sample: "+err.Error())
	}

	cmd, err := commands.NewUpdateDeliveryLocationCommand(orderID, sample)
	if err != nil {
		return badRequest(ctx, "Invalid location data: "+err.Error())
	}

	if handleErr := s.updateLocationHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterWebhookSubscription handles POST /api/v1/webhooks - registers an
// external endpoint for a lifecycle event type.
func (s *Server) RegisterWebhookSubscription(ctx echo.Context) error {
	var req webhookSubscriptionRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewRegisterWebhookSubscriptionCommand(req.ID, req.URL, req.EventType, req.Secret)
	if err != nil {
		return badRequest(ctx, "Invalid subscription data: "+err.Error())
	}

	if handleErr := s.registerHookHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetOrder handles GET /api/v1/orders/:id - retrieves a single order.
// Responses carry an ETag; a matching If-None-Match answers 304.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	response, etag, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return writeCached(ctx, response, etag)
}

// ListOrders handles GET /api/v1/orders - retrieves a page of orders,
// optionally filtered by status. Archived orders are excluded unless
// includeArchived=true.
func (s *Server) ListOrders(ctx echo.Context) error {
	includeArchived := false
	if raw := ctx.QueryParam("includeArchived"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(ctx, "Invalid includeArchived: "+raw)
		}
		includeArchived = parsed
	}

	page, err := intQueryParam(ctx, "page")
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	pageSize, err := intQueryParam(ctx, "pageSize")
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewListOrdersQuery(ctx.QueryParam("status"), includeArchived, page, pageSize)
	if err != nil {
		return badRequest(ctx, "Invalid list parameters: "+err.Error())
	}

	response, etag, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return writeCached(ctx, response, etag)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// bind decodes and validates the request body, writing a 400 response on
// failure.
func (s *Server) bind(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return badRequest(ctx, "Invalid request body: "+err.Error())
	}
	return nil
}

func (s *Server) writeError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, err)
	case errors.Is(err, order.ErrMissingDeliveryPerson),
		errors.Is(err, order.ErrReceiptNotVerified):
		return respondError(ctx, http.StatusUnprocessableEntity, err)
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderNotArchivable),
		errors.Is(err, order.ErrDeliveryPersonNotAssignable),
		errors.Is(err, errs.ErrVersionConflict):
		return respondError(ctx, http.StatusConflict, err)
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return respondError(ctx, http.StatusBadRequest, err)
	default:
		s.logger.Error("request failed", "error", err)
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

func respondError(ctx echo.Context, code int, err error) error {
	return ctx.JSON(code, ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeCached sets the ETag header and answers 304 when the client already
// holds the current representation.
func writeCached(ctx echo.Context, response any, etag string) error {
	ctx.Response().Header().Set("ETag", etag)
	if match := ctx.Request().Header.Get("If-None-Match"); match != "" && match == etag {
		return ctx.NoContent(http.StatusNotModified)
	}
	return ctx.JSON(http.StatusOK, response)
}

func orderIDParam(ctx echo.Context) (int64, error) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return 0, errors.New("order id must be a positive integer")
	}
	return orderID, nil
}

func intQueryParam(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name + ": " + raw)
	}
	return value, nil
}
