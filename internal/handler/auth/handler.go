package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/auth"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts one login route per role behind the given limiters.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, limit ...gin.HandlerFunc) {
	group := r.Group("/auth", limit...)
	{
		group.POST("/admin/login", h.Login(model.RoleAdmin))
		group.POST("/doctor/login", h.Login(model.RoleDoctor))
		group.POST("/patient/login", h.Login(model.RolePatient))
	}
}

// Login authenticates against the store of role. Admins sign in with a
// username, doctors and patients with their email.
func (h *Handler) Login(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.LoginRequest
		if !handler.BindJSON(c, &req) {
			return
		}

		identifier := req.Email
		if role == model.RoleAdmin {
			identifier = req.Username
		}
		if identifier == "" {
			field := "email"
			if role == model.RoleAdmin {
				field = "username"
			}
			httputil.RespondWithError(c, apperrors.NewBadRequest(field+" is required", nil))
			return
		}

		token, err := h.service.Login(c.Request.Context(), role, model.Credentials{
			Identifier: identifier,
			Password:   req.Password,
		})
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, token)
	}
}
