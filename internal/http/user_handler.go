package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filedrive/internal/domain"
	"filedrive/internal/service"
)

// UserHandler expone lecturas del directorio de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// GetMe maneja GET /users/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	identity, _ := GetIdentity(c)

	user, err := h.userServ.GetMe(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Sesion valida pero el webhook user.created todavia no llego.
			h.logger.Warn("authenticated caller without directory record",
				zap.String("token_identifier", identity.TokenIdentifier()),
			)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get me failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserProfile maneja GET /users/:id.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	user, err := h.userServ.GetUserProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("get user profile failed", zap.Error(err), zap.String("user_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
