package httphandlers

import (
	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) GetAIAlerts(ctx *gin.Context) {
	items, err := h.tracker.AIAlerts(ctx.Request.Context())
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	h.writeContracts(ctx, getActor(ctx), items)
}

func (h *HTTPHandler) GetDisputes(ctx *gin.Context) {
	items, err := h.tracker.Disputes(ctx.Request.Context())
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	h.writeContracts(ctx, getActor(ctx), items)
}
