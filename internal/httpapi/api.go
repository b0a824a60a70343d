package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0xGingi/SuperKagi-sub001/internal/catalog"
	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/service"
)

const sessionCookieName = "superkagi_session"

type API struct {
	auth         *service.AuthService
	users        *service.UserService
	chats        *service.ChatService
	images       *service.ImageService
	catalog      *catalog.Client
	cookieSecure bool
	logger       *slog.Logger
}

func (api *API) registerRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", api.login)
	r.POST("/auth/logout", api.logout)
	r.GET("/auth/session", api.currentSession)

	r.GET("/admin/users", api.listUsers)
	r.POST("/admin/users", api.createUser)

	r.GET("/chats", api.listChats)
	r.GET("/chats/:id", api.getChat)
	r.PUT("/chats/:id", api.saveChat)
	r.DELETE("/chats/:id", api.deleteChat)

	r.GET("/images", api.listImages)
	r.PUT("/images/:id", api.saveImage)
	r.DELETE("/images/:id", api.deleteImage)

	r.GET("/models", api.listModels)
}

func (api *API) login(c *gin.Context) {
	var payload struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "username and password are required")
		return
	}
	user, session, err := api.auth.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		api.handleError(c, err)
		return
	}
	api.setSessionCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (api *API) logout(c *gin.Context) {
	if token := api.sessionToken(c); token != "" {
		if err := api.auth.Logout(c.Request.Context(), token); err != nil {
			api.logger.Warn("logout failed", slog.Any("error", err))
		}
	}
	api.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

func (api *API) currentSession(c *gin.Context) {
	user, ok, err := api.optionalUser(c)
	if err != nil {
		api.handleError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (api *API) listUsers(c *gin.Context) {
	if _, ok := api.requireAdmin(c); !ok {
		return
	}
	users, err := api.users.List(c.Request.Context())
	if err != nil {
		api.handleError(c, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	c.JSON(http.StatusOK, resp)
}

func (api *API) createUser(c *gin.Context) {
	if _, ok := api.requireAdmin(c); !ok {
		return
	}
	var payload struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "username and password are required")
		return
	}
	user, err := api.users.Create(c.Request.Context(), payload.Username, payload.Password, payload.IsAdmin)
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (api *API) listChats(c *gin.Context) {
	if _, ok := api.requireUser(c); !ok {
		return
	}
	summaries, err := api.chats.List(c.Request.Context())
	if err != nil {
		api.handleError(c, err)
		return
	}
	if summaries == nil {
		summaries = []domain.ChatSummary{}
	}
	c.JSON(http.StatusOK, summaries)
}

func (api *API) getChat(c *gin.Context) {
	if _, ok := api.requireUser(c); !ok {
		return
	}
	chat, err := api.chats.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (api *API) saveChat(c *gin.Context) {
	if _, ok := api.requireUser(c); !ok {
		return
	}
	var payload struct {
		Title    string           `json:"title"`
		Messages []domain.Message `json:"messages"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "messages are required")
		return
	}
	chat := domain.Chat{
		ID:       c.Param("id"),
		Title:    payload.Title,
		Messages: payload.Messages,
	}
	saved, err := api.chats.Save(c.Request.Context(), chat)
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (api *API) deleteChat(c *gin.Context) {
	if _, ok := api.requireUser(c); !ok {
		return
	}
	if err := api.chats.Delete(c.Request.Context(), c.Param("id")); err != nil {
		api.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *API) listImages(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	images, err := api.images.List(c.Request.Context(), user.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	if images == nil {
		images = []domain.Image{}
	}
	c.JSON(http.StatusOK, images)
}

func (api *API) saveImage(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload struct {
		URL    string `json:"url" binding:"required"`
		Prompt string `json:"prompt"`
		Model  string `json:"model"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "url is required")
		return
	}
	image := domain.Image{
		ID:     c.Param("id"),
		URL:    payload.URL,
		Prompt: payload.Prompt,
		Model:  payload.Model,
	}
	// Owner comes from the session, never from the payload.
	saved, err := api.images.Save(c.Request.Context(), image, user.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (api *API) deleteImage(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	if err := api.images.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		api.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *API) listModels(c *gin.Context) {
	if _, ok := api.requireUser(c); !ok {
		return
	}
	scope := catalog.Scope(c.DefaultQuery("scope", string(catalog.ScopeSubscription)))
	detailed := c.Query("detailed") == "true"
	apiKey := c.GetHeader("X-Upstream-Key")

	result, err := api.catalog.Models(c.Request.Context(), scope, apiKey, detailed)
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// optionalUser resolves the session cookie without requiring one.
func (api *API) optionalUser(c *gin.Context) (domain.User, bool, error) {
	return api.auth.Resolve(c.Request.Context(), api.sessionToken(c))
}

func (api *API) requireUser(c *gin.Context) (domain.User, bool) {
	user, ok, err := api.optionalUser(c)
	if err != nil {
		api.handleError(c, err)
		return domain.User{}, false
	}
	if !ok {
		api.handleError(c, domain.ErrUnauthenticated)
		return domain.User{}, false
	}
	return user, true
}

func (api *API) requireAdmin(c *gin.Context) (domain.User, bool) {
	user, ok := api.requireUser(c)
	if !ok {
		return domain.User{}, false
	}
	if !user.IsAdmin {
		api.handleError(c, domain.ErrForbidden)
		return domain.User{}, false
	}
	return user, true
}

func (api *API) handleError(c *gin.Context, err error) {
	var upstreamErr *domain.UpstreamStatusError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
	case errors.Is(err, domain.ErrMissingCredential):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_credential"})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_unavailable"})
	case errors.As(err, &upstreamErr):
		c.JSON(upstreamErr.StatusCode, gin.H{
			"error":           "upstream_error",
			"upstream_status": upstreamErr.StatusCode,
			"upstream_body":   json.RawMessage(normalizeBody(upstreamErr.Body)),
		})
	default:
		api.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (api *API) validationError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": msg})
}

// normalizeBody keeps upstream diagnostics embeddable: valid JSON passes
// through, anything else is re-encoded as a JSON string.
func normalizeBody(body []byte) []byte {
	if json.Valid(body) && len(body) > 0 {
		return body
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return []byte(`""`)
	}
	return quoted
}

func (api *API) sessionToken(c *gin.Context) string {
	cookie, err := c.Request.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (api *API) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   api.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

func (api *API) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   api.cookieSecure,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
