package httphandlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

func (h *HTTPHandler) RegisterUser(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := resources.ParseRole(req.Role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.directory.Register(ctx.Request.Context(), users.Registration{
		Name:      req.Name,
		Role:      role,
		Phone:     req.Phone,
		Email:     req.Email,
		Location:  req.Location,
		Documents: req.Documents,
		Metadata:  req.Metadata,
	})
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, h.mapUser(u))
}

func (h *HTTPHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := resources.ParseRole(req.Role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.directory.Login(ctx.Request.Context(), req.Identifier, role)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(200, h.mapUser(u))
}

func (h *HTTPHandler) GetUsers(ctx *gin.Context) {
	items, err := h.directory.List(ctx.Request.Context())
	h.writeUsers(ctx, items, err)
}

func (h *HTTPHandler) GetPendingUsers(ctx *gin.Context) {
	items, err := h.directory.ListPending(ctx.Request.Context())
	h.writeUsers(ctx, items, err)
}

func (h *HTTPHandler) ApproveUser(ctx *gin.Context) {
	u, err := h.directory.Approve(ctx.Request.Context(), ctx.Param("ID"))
	h.respondUser(ctx, u, err)
}

func (h *HTTPHandler) RejectUser(ctx *gin.Context) {
	u, err := h.directory.Reject(ctx.Request.Context(), ctx.Param("ID"))
	h.respondUser(ctx, u, err)
}

func (h *HTTPHandler) DeactivateUser(ctx *gin.Context) {
	u, err := h.directory.Deactivate(ctx.Request.Context(), ctx.Param("ID"))
	h.respondUser(ctx, u, err)
}

func (h *HTTPHandler) respondUser(ctx *gin.Context, u *users.User, err error) {
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(200, h.mapUser(u))
}

func (h *HTTPHandler) writeUsers(ctx *gin.Context, items []*users.User, err error) {
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	data := make([]*UserResponse, 0, len(items))
	for _, item := range items {
		data = append(data, h.mapUser(item))
	}

	slices.SortStableFunc(data, func(a, b *UserResponse) int {
		return strings.Compare(a.ID, b.ID)
	})

	ctx.JSON(200, data)
}

func (h *HTTPHandler) mapUser(u *users.User) *UserResponse {
	return &UserResponse{
		Resource: Resource{
			Self: h.publicUrl.JoinPath(fmt.Sprintf("/users/%s", u.ID)).String(),
		},
		User: u,
	}
}
