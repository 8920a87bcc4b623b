package handler

import (
	"net/http"
	"time"

	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/Growthfyi/squeak/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TopicHandler serves the dashboard topic management endpoints.
type TopicHandler struct {
	topics   *repository.TopicRepo
	profiles *repository.ProfileRepo
	sessions *auth.Resolver
}

// NewTopicHandler creates a topic handler
func NewTopicHandler(topics *repository.TopicRepo, profiles *repository.ProfileRepo, sessions *auth.Resolver) *TopicHandler {
	return &TopicHandler{topics: topics, profiles: profiles, sessions: sessions}
}

// List returns the organization's topics with their groups
func (h *TopicHandler) List(c echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	if organizationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organizationId is required"})
	}

	if _, ok := requireModerator(c, h.sessions, h.profiles, organizationID); !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	topics, err := h.topics.List(c.Request().Context(), organizationID)
	if err != nil {
		logger.FromEcho(c).Error("failed to list topics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching topics"})
	}

	return c.JSON(http.StatusOK, echo.Map{"data": topics})
}

// Patch assigns a topic to a topic group
func (h *TopicHandler) Patch(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		OrganizationID string `json:"organizationId"`
		ID             uint   `json:"id"`
		TopicGroupID   uint   `json:"topicGroupId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.OrganizationID == "" || req.ID == 0 || req.TopicGroupID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organizationId, id and topicGroupId are required"})
	}

	if _, ok := requireModerator(c, h.sessions, h.profiles, req.OrganizationID); !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	topic, err := h.topics.AssignGroup(c.Request().Context(), req.OrganizationID, req.ID, req.TopicGroupID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic or group not found"})
		}
		log.Error("failed to assign topic group", zap.Uint("topic_id", req.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating topic"})
	}

	return c.JSON(http.StatusOK, echo.Map{"body": topic})
}

// ListGroups returns the organization's topic groups
func (h *TopicHandler) ListGroups(c echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	if organizationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organizationId is required"})
	}

	if _, ok := requireModerator(c, h.sessions, h.profiles, organizationID); !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	groups, err := h.topics.ListGroups(c.Request().Context(), organizationID)
	if err != nil {
		logger.FromEcho(c).Error("failed to list topic groups", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching topic groups"})
	}

	return c.JSON(http.StatusOK, echo.Map{"data": groups})
}

// CreateGroup creates a topic group with the given label
func (h *TopicHandler) CreateGroup(c echo.Context) error {
	var req struct {
		OrganizationID string `json:"organizationId"`
		Label          string `json:"label"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.OrganizationID == "" || req.Label == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organizationId and label are required"})
	}

	if _, ok := requireModerator(c, h.sessions, h.profiles, req.OrganizationID); !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	group, err := h.topics.CreateGroup(c.Request().Context(), req.OrganizationID, req.Label)
	if err != nil {
		logger.FromEcho(c).Error("failed to create topic group", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating topic group"})
	}

	return c.JSON(http.StatusOK, echo.Map{"body": group})
}
