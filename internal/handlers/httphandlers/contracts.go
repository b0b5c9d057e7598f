package httphandlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

func (h *HTTPHandler) GetContracts(ctx *gin.Context) {
	actor := getActor(ctx)
	items, err := h.tracker.ListForActor(ctx.Request.Context(), actor)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	h.writeContracts(ctx, actor, items)
}

func (h *HTTPHandler) GetContract(ctx *gin.Context) {
	actor := getActor(ctx)
	c, err := h.tracker.Get(ctx.Request.Context(), ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	if !contract.VisibleTo(c, actor) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "contract is not visible to " + actor.String()})
		return
	}
	ctx.JSON(200, h.mapContract(c, actor))
}

func (h *HTTPHandler) GetDisputeCase(ctx *gin.Context) {
	dc, err := h.tracker.DisputeCase(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(200, dc)
}

// LogGrowthUpdate runs the image analysis and commits the update with its result
func (h *HTTPHandler) LogGrowthUpdate(ctx *gin.Context) {
	var req GrowthUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updType, err := contract.ParseUpdateType(req.Type)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, mimeType, err := decodeImage(req.Image, req.MimeType)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := getActor(ctx)
	rctx := ctx.Request.Context()
	c, err := h.tracker.Get(rctx, ctx.Param("ID"))
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	if c.FarmerID != actor.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "only the contract farmer can log updates"})
		return
	}

	result := analysis.Failure("image analysis is not configured")
	if h.analyzer != nil {
		result = analysis.AnalyzeSync(rctx, h.analyzer, analysis.Request{
			Image:    image,
			MimeType: mimeType,
			CropName: c.FruitType,
			Stage:    string(updType),
		}, h.analysisTimeout)
	}
	if !result.IsSuccess() {
		h.log.Warnf("analysis of update for contract %s failed: %s", c.ID, result.FailureReason())
	}

	c, err = h.tracker.LogGrowthUpdate(rctx, c.ID, actor, contract.GrowthUpdate{
		Type:     updType,
		Notes:    req.Notes,
		ImageURL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image)),
		Location: req.Location,
	}, result)
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) SetFarmLocation(ctx *gin.Context) {
	var req contract.LatLng
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.SetFarmLocation(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), req)
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) CompletePackaging(ctx *gin.Context) {
	var req PackagingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.CompletePackaging(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), contract.PackagingReport{
		Count:     req.Count,
		Weight:    req.Weight,
		Type:      contract.PackagingType(req.Type),
		Photos:    req.Photos,
		Checklist: req.Checklist,
	})
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) ReleaseMilestone(ctx *gin.Context) {
	var req MilestoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.ReleaseMilestone(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), req.Label)
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) ApprovePackaging(ctx *gin.Context) {
	c, err := h.tracker.ApprovePackaging(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) AcceptJob(ctx *gin.Context) {
	c, err := h.tracker.AcceptJob(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) ArriveAtPickup(ctx *gin.Context) {
	c, err := h.tracker.ArriveAtPickup(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) VerifyPickupOTP(ctx *gin.Context) {
	var req OTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.VerifyPickupOTP(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), req.Code)
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) SubmitCheckpoint(ctx *gin.Context) {
	var req CheckpointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.SubmitCheckpoint(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), contract.CheckpointEvidence{
		Photos:     req.Photos,
		VideoProof: req.VideoProof,
		Condition:  contract.CargoCondition(strings.ToUpper(req.Condition)),
	})
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) StartDelivery(ctx *gin.Context) {
	c, err := h.tracker.StartDelivery(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) ArriveAtDestination(ctx *gin.Context) {
	c, err := h.tracker.ArriveAtDestination(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) VerifyDeliveryOTP(ctx *gin.Context) {
	var req OTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.VerifyDeliveryOTP(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), req.Code)
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) ConfirmDelivery(ctx *gin.Context) {
	c, err := h.tracker.ConfirmDelivery(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx))
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) RaiseDispute(ctx *gin.Context) {
	var req DisputeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c, err := h.tracker.RaiseDispute(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), contract.DisputeRequest{
		Type:     contract.DisputeType(strings.ToUpper(req.Type)),
		Comment:  req.Comment,
		ProofURL: req.ProofURL,
	})
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) ResolveDispute(ctx *gin.Context) {
	var req ResolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resolution := contract.Resolution(strings.ToUpper(req.Resolution))
	c, err := h.tracker.ResolveDispute(ctx.Request.Context(), ctx.Param("ID"), getActor(ctx), resolution)
	h.respondContract(ctx, c, err)
}

func (h *HTTPHandler) respondContract(ctx *gin.Context, c *contract.Contract, err error) {
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(200, h.mapContract(c, getActor(ctx)))
}

func (h *HTTPHandler) writeContracts(ctx *gin.Context, actor resources.Actor, items []*contract.Contract) {
	data := make([]*ContractResponse, 0, len(items))
	for _, item := range items {
		data = append(data, h.mapContract(item, actor))
	}

	slices.SortStableFunc(data, func(a, b *ContractResponse) int {
		return strings.Compare(a.ID, b.ID)
	})

	ctx.JSON(200, data)
}

// mapContract hides the OTPs from everyone except the party that hands them over,
// the farmer at pickup and the buyer at delivery
func (h *HTTPHandler) mapContract(item *contract.Contract, actor resources.Actor) *ContractResponse {
	c := item.Clone()
	if actor.ID != c.FarmerID {
		c.PickupOTP = ""
	}
	if actor.ID != c.BuyerID {
		c.DeliveryOTP = ""
	}
	return &ContractResponse{
		Resource: Resource{
			Self: h.publicUrl.JoinPath(fmt.Sprintf("/contracts/%s", c.ID)).String(),
		},
		Contract:         c,
		EscrowPercentage: contract.NewLedger(c.Milestones).PaidPercentage(),
	}
}

// decodeImage accepts raw base64 or a data url, e.g. "data:image/jpeg;base64,...."
func decodeImage(data string, mimeType string) ([]byte, string, error) {
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("malformed data url")
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		data = payload
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("image is not valid base64: %w", err)
	}
	if len(image) == 0 {
		return nil, "", fmt.Errorf("image is empty")
	}
	return image, mimeType, nil
}
