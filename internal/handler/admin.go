package handler

import (
	"errors"
	"net/http"

	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/labstack/echo/v4"
)

// requireModerator resolves the session and the tenant profile and writes the
// error response itself when the caller is not a moderator or admin of the
// organization. Dashboard-only endpoints go through this gate.
func requireModerator(
	c echo.Context,
	sessions *auth.Resolver,
	profiles *repository.ProfileRepo,
	organizationID string,
) (*repository.ProfileWithRole, bool) {
	user := sessions.Resolve(c)
	if user == nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{})
		return nil, false
	}

	profile, err := profiles.GetByUser(c.Request().Context(), organizationID, user.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileMissing) {
			_ = c.JSON(http.StatusForbidden, echo.Map{"error": "no profile for this organization"})
			return nil, false
		}
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching user profile"})
		return nil, false
	}

	if profile.Role != "admin" && profile.Role != "moderator" {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "moderator access required"})
		return nil, false
	}

	return profile, true
}
