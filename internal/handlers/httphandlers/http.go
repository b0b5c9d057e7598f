package httphandlers

import (
	"net/url"
	"time"

	"github.com/fasalsetu/agrilink/internal/config"
	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/fasalsetu/agrilink/internal/resources/assistant"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/gin-gonic/gin"
)

type Sanitizable interface {
	GetSanitized() interface{}
}

type HTTPHandler struct {
	tracker         *contract.Tracker
	directory       *users.Directory
	board           *demands.Board
	assistant       *assistant.Assistant
	analyzer        analysis.Analyzer
	analysisTimeout time.Duration
	config          Sanitizable
	publicUrl       *url.URL
	log             interfaces.ILogger
}

// NewHTTPHandler builds the API router. A nil analyzer makes every growth update fail as unverifiable
func NewHTTPHandler(tracker *contract.Tracker, directory *users.Directory, board *demands.Board, assistant *assistant.Assistant, analyzer analysis.Analyzer, analysisTimeout time.Duration, cfg Sanitizable, publicUrl *url.URL, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		tracker:         tracker,
		directory:       directory,
		board:           board,
		assistant:       assistant,
		analyzer:        analyzer,
		analysisTimeout: analysisTimeout,
		config:          cfg,
		publicUrl:       publicUrl,
		log:             log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/config", handl.GetConfig)
	r.GET("/stats", handl.GetStats)

	r.POST("/users/register", handl.RegisterUser)
	r.POST("/users/login", handl.Login)
	r.GET("/demands", handl.GetDemands)

	auth := r.Group("/", handl.RequireActor)

	auth.GET("/users", handl.RequireRole(resources.RoleAdmin), handl.GetUsers)
	auth.GET("/users/pending", handl.RequireRole(resources.RoleAdmin), handl.GetPendingUsers)
	auth.POST("/users/:ID/approve", handl.RequireRole(resources.RoleAdmin), handl.ApproveUser)
	auth.POST("/users/:ID/reject", handl.RequireRole(resources.RoleAdmin), handl.RejectUser)
	auth.POST("/users/:ID/deactivate", handl.RequireRole(resources.RoleAdmin), handl.DeactivateUser)

	auth.POST("/demands", handl.PostDemand)
	auth.POST("/demands/:ID/accept", handl.AcceptDemand)

	auth.GET("/contracts", handl.GetContracts)
	auth.GET("/contracts/:ID", handl.GetContract)
	auth.GET("/contracts/:ID/dispute-case", handl.GetDisputeCase)
	auth.POST("/contracts/:ID/updates", handl.LogGrowthUpdate)
	auth.POST("/contracts/:ID/location", handl.SetFarmLocation)
	auth.POST("/contracts/:ID/packaging", handl.CompletePackaging)
	auth.POST("/contracts/:ID/milestones/release", handl.ReleaseMilestone)
	auth.POST("/contracts/:ID/approve", handl.ApprovePackaging)
	auth.POST("/contracts/:ID/accept", handl.AcceptJob)
	auth.POST("/contracts/:ID/arrive-pickup", handl.ArriveAtPickup)
	auth.POST("/contracts/:ID/pickup-otp", handl.VerifyPickupOTP)
	auth.POST("/contracts/:ID/checkpoint", handl.SubmitCheckpoint)
	auth.POST("/contracts/:ID/start-delivery", handl.StartDelivery)
	auth.POST("/contracts/:ID/arrive-destination", handl.ArriveAtDestination)
	auth.POST("/contracts/:ID/delivery-otp", handl.VerifyDeliveryOTP)
	auth.POST("/contracts/:ID/confirm", handl.ConfirmDelivery)
	auth.POST("/contracts/:ID/dispute", handl.RaiseDispute)
	auth.POST("/contracts/:ID/resolve", handl.ResolveDispute)

	auth.GET("/admin/ai-alerts", handl.RequireRole(resources.RoleAdmin), handl.GetAIAlerts)
	auth.GET("/admin/disputes", handl.RequireRole(resources.RoleAdmin), handl.GetDisputes)

	auth.GET("/assistant/messages", handl.GetChatHistory)
	auth.POST("/assistant/messages", handl.SendChatMessage)

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":  "healthy",
		"version": config.BuildVersion,
	})
}

func (h *HTTPHandler) GetConfig(ctx *gin.Context) {
	ctx.JSON(200, ConfigResponse{
		Version: config.BuildVersion,
		Config:  h.config.GetSanitized(),
	})
}

func (h *HTTPHandler) GetStats(ctx *gin.Context) {
	ctx.JSON(200, h.tracker.Stats())
}
