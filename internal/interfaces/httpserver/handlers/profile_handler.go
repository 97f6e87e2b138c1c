package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"abby-server/internal/domain/profile"
	"abby-server/internal/interfaces/httpserver/requests"
	"abby-server/internal/interfaces/httpserver/responses"
	"abby-server/internal/utils/platformerrors"
)

// ProfileHandler exposes the user profile endpoints.
type ProfileHandler struct {
	service *profile.Service
	log     zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service *profile.Service, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		log:     log.With().Str("handler", "profile").Logger(),
	}
}

// Get handles GET /user-profile
func (h *ProfileHandler) Get(c *gin.Context) {
	var req requests.UserQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	c.JSON(http.StatusOK, h.service.GetOrCreate(req.UserID))
}

// Update handles POST /user-profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var query requests.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	query.ApplyDefaults()

	var body requests.UpdateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid profile payload", "")
		return
	}

	updated := h.service.Update(query.UserID, profile.UserProfile{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		Theme:       body.Theme,
		Preferences: body.Preferences,
	})

	c.JSON(http.StatusOK, updated)
}
