package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ramprakash852/AI-storyteller/internal/config"
	"github.com/Ramprakash852/AI-storyteller/middleware"
	"github.com/Ramprakash852/AI-storyteller/models"
	"github.com/Ramprakash852/AI-storyteller/services"
	"github.com/Ramprakash852/AI-storyteller/utils"
)

// UserRoutes handles registration, login and profile endpoints.
type UserRoutes struct {
	users *services.UserService
	cfg   *config.Config
}

func NewUserRoutes(users *services.UserService, cfg *config.Config) *UserRoutes {
	return &UserRoutes{users: users, cfg: cfg}
}

func (r *UserRoutes) Register(router *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := router.Group("/user")
	group.POST("/signup", r.signup)
	group.POST("/login", r.login)
	group.POST("/logout", r.logout)
	group.GET("/me", auth.RequireAuth(), r.me)
}

func (r *UserRoutes) signup(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := r.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := utils.IssueToken(user.ID.Hex(), user.ParentEmail, r.cfg.JWTSecret)
	if err != nil {
		respondError(c, err)
		return
	}
	r.setAuthCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"userId":        user.ID.Hex(),
		"parentName":    user.ParentName,
		"parentEmail":   user.ParentEmail,
		"childName":     user.ChildName,
		"childAge":      user.ChildAge,
		"childStandard": user.ChildStandard,
		"message":       "User created successfully",
	})
}

func (r *UserRoutes) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := r.users.Authenticate(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_credentials",
				"message":    "Invalid email or password",
			})
			return
		}
		respondError(c, err)
		return
	}

	token, _, err := utils.IssueToken(user.ID.Hex(), user.ParentEmail, r.cfg.JWTSecret)
	if err != nil {
		respondError(c, err)
		return
	}
	r.setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"userId":        user.ID.Hex(),
		"parentName":    user.ParentName,
		"parentEmail":   user.ParentEmail,
		"childName":     user.ChildName,
		"childAge":      user.ChildAge,
		"childStandard": user.ChildStandard,
		"token":         token,
		"message":       "User logged in successfully",
	})
}

func (r *UserRoutes) logout(c *gin.Context) {
	secure := r.cfg.GinMode == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (r *UserRoutes) me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}
	user, err := r.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (r *UserRoutes) setAuthCookie(c *gin.Context, token string) {
	secure := r.cfg.GinMode == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", token, int(7*24*time.Hour.Seconds()), "/", "", secure, true)
}
