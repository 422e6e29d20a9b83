package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

const authCookieName = "access_token"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	tasks       service.TaskService
	issuer      *auth.TokenIssuer
	logger      logrus.FieldLogger
	production  bool
	allowOrigin string
}

func NewHandler(users service.UserService, tasks service.TaskService, issuer *auth.TokenIssuer, logger logrus.FieldLogger, production bool, allowOrigin string) *Handler {
	return &Handler{
		users:       users,
		tasks:       tasks,
		issuer:      issuer,
		logger:      logger,
		production:  production,
		allowOrigin: allowOrigin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(h.allowOrigin))
	router.Use(requestLogger(h.logger))

	router.GET("/health", health)

	api := router.Group("/api/v1")
	{
		api.GET("/health", health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.register)
			authGroup.POST("/login", h.login)
			authGroup.GET("/me", h.authenticate(), h.me)
			authGroup.POST("/logout", h.logout)
		}

		taskGroup := api.Group("/tasks", h.authenticate())
		{
			taskGroup.GET("", h.listTasks)
			taskGroup.POST("", h.createTask)
			taskGroup.GET("/admin/all", h.requireRole(domain.RoleAdmin), h.adminListTasks)
			taskGroup.GET("/:id", h.getTask)
			taskGroup.PATCH("/:id", h.updateTask)
			taskGroup.DELETE("/:id", h.deleteTask)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type registerRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
	// Role is accepted for wire compatibility but never honored; admin
	// accounts come only from the provisioning path.
	Role string `json:"role"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.setAuthCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": userToResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": userToResponse(user)})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": userToResponse(currentUser(c))})
}

// logout clears the auth cookie unconditionally. Outstanding tokens stay
// valid until natural expiry; there is no server-side revocation.
func (h *Handler) logout(c *gin.Context) {
	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), currentUser(c).ID, req.Title, req.Description)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": verr.Reason})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": taskToResponse(*task)})
}

func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, gin.H{"tasks": resp})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskToResponse(*task)})
}

func (h *Handler) updateTask(c *gin.Context) {
	// The body is decoded as a generic object so only provided,
	// type-correct fields are applied; anything else is ignored.
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	var update service.TaskUpdate
	if v, ok := body["title"].(string); ok {
		update.Title = &v
	}
	if v, ok := body["description"].(string); ok {
		update.Description = &v
	}
	if v, ok := body["completed"].(bool); ok {
		update.Completed = &v
	}

	task, err := h.tasks.Update(c.Request.Context(), currentUser(c).ID, c.Param("id"), update)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": taskToResponse(*task)})
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminListTasks(c *gin.Context) {
	tasks, err := h.tasks.AdminListAll(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]AdminTaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = adminTaskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, gin.H{"tasks": resp})
}

func (h *Handler) respondUserError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Reason})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": service.ErrEmailTaken.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": service.ErrInvalidCredentials.Error()})
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) respondTaskError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}
	h.internalError(c, err)
}

// internalError logs the cause server-side and returns a generic message
// so internals never leak to clients.
func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.WithError(err).Error("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
}

func (h *Handler) setAuthCookie(c *gin.Context, token string) {
	h.writeAuthCookie(c, token, int(h.issuer.TTL().Seconds()))
}

func (h *Handler) clearAuthCookie(c *gin.Context) {
	h.writeAuthCookie(c, "", -1)
}

func (h *Handler) writeAuthCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.production {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(authCookieName, value, maxAge, "/", "", h.production, true)
}

type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Owner       string `json:"owner"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type OwnerResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type AdminTaskResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Completed   bool          `json:"completed"`
	Owner       OwnerResponse `json:"owner"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func taskToResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Owner:       task.OwnerID,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
}

func adminTaskToResponse(task domain.TaskWithOwner) AdminTaskResponse {
	return AdminTaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Owner: OwnerResponse{
			ID:    task.Owner.ID,
			Name:  task.Owner.Name,
			Email: task.Owner.Email,
			Role:  task.Owner.Role,
		},
		CreatedAt: task.CreatedAt.Format(time.RFC3339),
		UpdatedAt: task.UpdatedAt.Format(time.RFC3339),
	}
}
