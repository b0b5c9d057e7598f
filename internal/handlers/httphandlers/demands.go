package httphandlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

func (h *HTTPHandler) GetDemands(ctx *gin.Context) {
	items, err := h.board.ListOpen(ctx.Request.Context())
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	data := make([]*DemandResponse, 0, len(items))
	for _, item := range items {
		data = append(data, h.mapDemand(item))
	}

	slices.SortStableFunc(data, func(a, b *DemandResponse) int {
		return strings.Compare(a.ID, b.ID)
	})

	ctx.JSON(200, data)
}

func (h *HTTPHandler) PostDemand(ctx *gin.Context) {
	var req DemandRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.board.Post(ctx.Request.Context(), getActor(ctx), demands.Demand{
		CropName:         req.CropName,
		Quantity:         req.Quantity,
		QualityGrade:     req.QualityGrade,
		TargetPrice:      req.TargetPrice,
		Description:      req.Description,
		ShippingBudget:   req.ShippingBudget,
		DeliveryLocation: req.DeliveryLocation,
	})
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, h.mapDemand(d))
}

// AcceptDemand matches the demand with the calling farmer and returns the new contract
func (h *HTTPHandler) AcceptDemand(ctx *gin.Context) {
	actor := getActor(ctx)
	c, err := h.board.Accept(ctx.Request.Context(), ctx.Param("ID"), actor)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, h.mapContract(c, actor))
}

func (h *HTTPHandler) mapDemand(d *demands.Demand) *DemandResponse {
	return &DemandResponse{
		Resource: Resource{
			Self: h.publicUrl.JoinPath(fmt.Sprintf("/demands/%s", d.ID)).String(),
		},
		Demand: d,
		Total:  d.Total(),
	}
}
