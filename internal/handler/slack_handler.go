package handler

import (
	"net/http"
	"time"

	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/internal/slackimport"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/Growthfyi/squeak/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SlackHandler serves the dashboard's Slack history import flow.
type SlackHandler struct {
	importer *slackimport.Importer
	profiles *repository.ProfileRepo
	sessions *auth.Resolver
}

// NewSlackHandler creates a Slack import handler
func NewSlackHandler(importer *slackimport.Importer, profiles *repository.ProfileRepo, sessions *auth.Resolver) *SlackHandler {
	return &SlackHandler{importer: importer, profiles: profiles, sessions: sessions}
}

// Messages lists a channel's threads as import candidates
func (h *SlackHandler) Messages(c echo.Context) error {
	organizationID := c.QueryParam("organizationId")
	channelID := c.QueryParam("channelId")
	if organizationID == "" || channelID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organizationId and channelId are required"})
	}

	if _, ok := requireModerator(c, h.sessions, h.profiles, organizationID); !ok {
		return nil
	}

	if !h.importer.Configured() {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Slack is not configured"})
	}

	threads, err := h.importer.ListThreads(c.Request().Context(), channelID)
	if err != nil {
		logger.FromEcho(c).Error("failed to list slack threads",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching Slack messages"})
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": threads})
}

// Import persists the operator-confirmed threads as questions and replies
func (h *SlackHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		OrganizationID string               `json:"organizationId"`
		Threads        []slackimport.Thread `json:"threads"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.OrganizationID == "" || len(req.Threads) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organizationId and threads are required"})
	}

	if _, ok := requireModerator(c, h.sessions, h.profiles, req.OrganizationID); !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	imported, err := h.importer.Import(c.Request().Context(), req.OrganizationID, req.Threads)
	if err != nil {
		log.Error("slack import failed",
			zap.String("organization_id", req.OrganizationID),
			zap.Int("imported", imported),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error importing Slack messages"})
	}

	for i := 0; i < imported; i++ {
		prometheus.ImportedQuestionCounter.Inc()
	}
	log.Info("slack import finished",
		zap.String("organization_id", req.OrganizationID),
		zap.Int("imported", imported))

	return c.JSON(http.StatusOK, echo.Map{"imported": imported})
}
