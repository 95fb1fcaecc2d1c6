package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"family-planner/internal/identity"
	"family-planner/internal/metrics"
	"family-planner/internal/planner"
	"family-planner/internal/shopping"
)

// GenericErrorMessage is returned for every unexpected failure.
const GenericErrorMessage = "failed to update shopping list, please try again"

// ShoppingService is the shopping API consumed by the handlers.
type ShoppingService interface {
	GetList(ctx context.Context, actor identity.Actor, week string) (shopping.List, error)
	Sync(ctx context.Context, actor identity.Actor, week string) (shopping.List, error)
	Toggle(ctx context.Context, actor identity.Actor, week, name, unit string, checked bool) (bool, error)
	AddManualItem(ctx context.Context, actor identity.Actor, week, name, secondaryName string, quantity float64, unit string) error
	DeleteItem(ctx context.Context, actor identity.Actor, week, name, unit string) error
}

// PlanService is the meal-plan API consumed by the handlers.
type PlanService interface {
	GetWeek(ctx context.Context, actor identity.Actor, week string) (*planner.WeekPlan, error)
	AssignMeal(ctx context.Context, actor identity.Actor, week string, a planner.Assignment) (*planner.WeekPlan, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	shopping ShoppingService
	plans    PlanService
	gatherer prometheus.Gatherer
	health   func(ctx context.Context) metrics.Health
	webhook  http.Handler
	logger   *slog.Logger
}

// HandlerOptions carries the optional parts of a Handler.
type HandlerOptions struct {
	Gatherer prometheus.Gatherer
	Health   func(ctx context.Context) metrics.Health
	// Webhook receives Telegram updates; nil disables the route.
	Webhook http.Handler
	Logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(shoppingSvc ShoppingService, plans PlanService, opts HandlerOptions) *Handler {
	h := &Handler{
		shopping: shoppingSvc,
		plans:    plans,
		gatherer: opts.Gatherer,
		health:   opts.Health,
		webhook:  opts.Webhook,
		logger:   opts.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "http")
	if h.gatherer == nil {
		h.gatherer = prometheus.DefaultGatherer
	}
	return h
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	health := h.health(c.Request.Context())
	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// Metrics serves the Prometheus exposition format
func (h *Handler) Metrics(c *gin.Context) {
	promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}

// TelegramWebhook forwards an update to the bot
func (h *Handler) TelegramWebhook(c *gin.Context) {
	h.webhook.ServeHTTP(c.Writer, c.Request)
}

// GetShoppingList returns the stored list of a week
func (h *Handler) GetShoppingList(c *gin.Context) {
	list, err := h.shopping.GetList(c.Request.Context(), actorFrom(c), c.Param("week"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SyncShoppingList re-derives the list from the week plan
func (h *Handler) SyncShoppingList(c *gin.Context) {
	list, err := h.shopping.Sync(c.Request.Context(), actorFrom(c), c.Param("week"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type addItemRequest struct {
	Name          string   `json:"name" binding:"required"`
	NameSecondary string   `json:"name_secondary"`
	Quantity      *float64 `json:"quantity" binding:"required"`
	Unit          string   `json:"unit"`
}

// AddItem adds a manual item and returns the updated list
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, actor, week := c.Request.Context(), actorFrom(c), c.Param("week")
	if err := h.shopping.AddManualItem(ctx, actor, week, req.Name, req.NameSecondary, *req.Quantity, req.Unit); err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.shopping.GetList(ctx, actor, week)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

type toggleRequest struct {
	Name    string `json:"name" binding:"required"`
	Unit    string `json:"unit"`
	Checked *bool  `json:"checked" binding:"required"`
}

// ToggleItem records the caller's checked state on an item
func (h *Handler) ToggleItem(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checked, err := h.shopping.Toggle(c.Request.Context(), actorFrom(c), c.Param("week"), req.Name, req.Unit, *req.Checked)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": checked})
}

type deleteItemRequest struct {
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit"`
}

// DeleteItem removes an item and returns the updated list
func (h *Handler) DeleteItem(c *gin.Context) {
	var req deleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, actor, week := c.Request.Context(), actorFrom(c), c.Param("week")
	if err := h.shopping.DeleteItem(ctx, actor, week, req.Name, req.Unit); err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.shopping.GetList(ctx, actor, week)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetWeekPlan returns the plan of a week, creating it empty on first read
func (h *Handler) GetWeekPlan(c *gin.Context) {
	plan, err := h.plans.GetWeek(c.Request.Context(), actorFrom(c), c.Param("week"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type assignRequest struct {
	Date     string `json:"date" binding:"required"`
	Meal     string `json:"meal" binding:"required"`
	Index    int    `json:"index"`
	RecipeID string `json:"recipe_id"`
}

// AssignSlot sets one meal slot. The plan is saved even when the following
// shopping-list sync fails; the response then carries a warning.
func (h *Handler) AssignSlot(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := h.plans.AssignMeal(c.Request.Context(), actorFrom(c), c.Param("week"), planner.Assignment{
		Date:     req.Date,
		Meal:     planner.MealKind(req.Meal),
		Index:    req.Index,
		RecipeID: req.RecipeID,
	})
	if err != nil && plan == nil {
		h.fail(c, err)
		return
	}
	if err != nil {
		h.logger.Error("shopping sync after assignment failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"plan": plan, "warning": GenericErrorMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// fail maps domain errors to status codes. Anything unexpected is logged
// and answered with the generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shopping.ErrInvalidWeek),
		errors.Is(err, shopping.ErrInvalidItem),
		errors.Is(err, planner.ErrInvalidSlot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, shopping.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, shopping.ErrNoFamily), errors.Is(err, planner.ErrNoFamily):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, shopping.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": GenericErrorMessage})
	}
}
