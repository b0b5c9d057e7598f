package httphandlers

import (
	"errors"
	"net/http"

	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/gin-gonic/gin"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	actorKey = "actor"
)

// RequireActor resolves the calling user from the X-Actor-ID header. Only approved accounts may act
func (h *HTTPHandler) RequireActor(ctx *gin.Context) {
	id := ctx.GetHeader(HeaderActorID)
	if id == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderActorID + " header"})
		return
	}

	actor, err := h.directory.Actor(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown actor"})
			return
		}
		h.abortWithError(ctx, err)
		return
	}

	if roleStr := ctx.GetHeader(HeaderActorRole); roleStr != "" {
		role, err := resources.ParseRole(roleStr)
		if err != nil || role != actor.Role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "actor role does not match account"})
			return
		}
	}

	ctx.Set(actorKey, actor)
	ctx.Next()
}

func (h *HTTPHandler) RequireRole(role resources.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if getActor(ctx).Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "requires " + role.String() + " role"})
			return
		}
		ctx.Next()
	}
}

func getActor(ctx *gin.Context) resources.Actor {
	v, ok := ctx.Get(actorKey)
	if !ok {
		return resources.Actor{}
	}
	return v.(resources.Actor)
}
