package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/pkg/response"
)

// MaxAvatarSize caps multipart avatar uploads.
const MaxAvatarSize = 5 << 20

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"firstName" binding:"required,personname"`
	LastName  string `json:"lastName" binding:"required,personname"`
}

type listUsersQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,sortorder"`
	Search    string `form:"search"`
	IsActive  *bool  `form:"isActive"`
	Role      string `form:"role"`
}

type updateUserRequest struct {
	Email     *string  `json:"email" binding:"omitempty,email"`
	FirstName *string  `json:"firstName" binding:"omitempty,personname"`
	LastName  *string  `json:"lastName" binding:"omitempty,personname"`
	Avatar    *string  `json:"avatar" binding:"omitempty,url"`
	IsActive  *bool    `json:"isActive"`
	Roles     []string `json:"roles" binding:"omitempty,min=1"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.CreateUser(c.Request.Context(), application.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	reply(c, res, http.StatusCreated, "user created")
}

func (h *UserHandler) List(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.ListUsers(c.Request.Context(), application.ListUsersInput{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Search:    q.Search,
		IsActive:  q.IsActive,
		Role:      q.Role,
	})
	reply(c, res, http.StatusOK, "users")
}

func (h *UserHandler) Get(c *gin.Context) {
	reply(c, h.Svc.GetUser(c.Request.Context(), c.Param("id")), http.StatusOK, "user")
}

// Update, Delete and UploadAvatar act on the caller's own account unless the
// caller is an admin.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.UpdateUserAs(c.Request.Context(), currentUserID(c), c.Param("id"), application.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		IsActive:  req.IsActive,
		Roles:     req.Roles,
	})
	reply(c, res, http.StatusOK, "user updated")
}

func (h *UserHandler) Delete(c *gin.Context) {
	reply(c, h.Svc.DeleteUserAs(c.Request.Context(), currentUserID(c), c.Param("id")), http.StatusNoContent, "")
}

// UploadAvatar accepts a multipart "avatar" file.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAvatarSize+1<<10)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, errs.Validation("avatar", "avatar file is required"))
		return
	}
	if fh.Size > MaxAvatarSize {
		response.Fail(c, errs.Validation("avatar", "avatar must be at most 5MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, errs.Validation("avatar", "avatar file is unreadable"))
		return
	}
	defer f.Close()

	res := h.Svc.UploadAvatarAs(c.Request.Context(), currentUserID(c), c.Param("id"), application.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if res.IsFailure() {
		h.Logger.WithError(res.Err()).WithField("user_id", c.Param("id")).Debug("avatar upload rejected")
	}
	reply(c, res, http.StatusOK, "avatar updated")
}
