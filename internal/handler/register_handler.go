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

// RegisterHandler provisions tenant profiles for end users signed in with the
// auth provider. Called by the widget after sign-up.
type RegisterHandler struct {
	profiles *repository.ProfileRepo
	sessions *auth.Resolver
}

// NewRegisterHandler creates a register handler
func NewRegisterHandler(profiles *repository.ProfileRepo, sessions *auth.Resolver) *RegisterHandler {
	return &RegisterHandler{profiles: profiles, sessions: sessions}
}

// Register validates the provided auth token and creates the profile and its
// readonly role record for the (organization, user) pair.
func (h *RegisterHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	prometheus.RegisterCounter.Inc()

	var req struct {
		Token          string `json:"token"`
		OrganizationID string `json:"organizationId"`
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		Avatar         string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("failed to parse register request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Token == "" || req.OrganizationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
	}

	claims, err := h.sessions.ValidateToken(req.Token)
	if err != nil {
		log.Error("failed to validate auth token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching user"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	profile, err := h.profiles.Create(ctx, req.OrganizationID, claims.UserID, req.FirstName, req.LastName, req.Avatar)
	if err != nil {
		log.Error("failed to create user profile",
			zap.String("organization_id", req.OrganizationID),
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating user profile"})
	}

	log.Info("profile registered",
		zap.String("profile_id", profile.ID),
		zap.String("organization_id", req.OrganizationID))

	return c.JSON(http.StatusOK, echo.Map{
		"userId":         claims.UserID,
		"profileId":      profile.ID,
		"firstName":      req.FirstName,
		"lastName":       req.LastName,
		"avatar":         req.Avatar,
		"organizationId": req.OrganizationID,
	})
}
