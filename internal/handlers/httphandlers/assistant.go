package httphandlers

import (
	"net/http"

	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/gin-gonic/gin"
)

// sessions are scoped to the actor so users cannot read each other's chats
func sessionKey(actorID, session string) string {
	return actorID + "/" + session
}

func (h *HTTPHandler) GetChatHistory(ctx *gin.Context) {
	session := ctx.Query("sessionId")
	if session == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}
	ctx.JSON(200, h.assistant.History(sessionKey(getActor(ctx).ID, session)))
}

func (h *HTTPHandler) SendChatMessage(ctx *gin.Context) {
	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(ctx)
	rctx := ctx.Request.Context()

	user, err := h.directory.Get(rctx, actor.ID)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	var c *contract.Contract
	if req.ContractID != "" {
		c, err = h.tracker.Get(rctx, req.ContractID)
		if err != nil {
			h.abortWithError(ctx, err)
			return
		}
		if !contract.VisibleTo(c, actor) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "contract is not visible to " + actor.String()})
			return
		}
	}

	reply, err := h.assistant.Reply(rctx, sessionKey(actor.ID, req.SessionID), user, c, req.Message)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(200, reply)
}
