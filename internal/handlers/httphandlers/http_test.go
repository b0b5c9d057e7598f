package httphandlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fasalsetu/agrilink/internal/config"
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/repositories/memory"
	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/fasalsetu/agrilink/internal/resources/assistant"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/fasalsetu/agrilink/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type analyzerFunc func(ctx context.Context, req analysis.Request) (analysis.AIAnalysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, req analysis.Request) (analysis.AIAnalysis, error) {
	return f(ctx, req)
}

func healthyAnalyzer(ctx context.Context, req analysis.Request) (analysis.AIAnalysis, error) {
	return analysis.AIAnalysis{HealthScore: 92, DetectedStage: req.Stage, Grade: "A", FreshnessScore: 90}, nil
}

type contractBody struct {
	contract.Contract
	Self             string `json:"self"`
	EscrowPercentage int    `json:"escrowPercentage"`
}

var testImage = base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

func handlerSetup(t *testing.T, analyzer analysis.Analyzer) *gin.Engine {
	ctx := context.Background()
	log := lib.NewTestLogger()

	userRepo, demandRepo, contractRepo := memory.NewUserRepo(), memory.NewDemandRepo(), memory.NewContractRepo()
	fx, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Load(ctx, fx, userRepo, demandRepo, contractRepo, log))

	tracker := contract.NewTracker(contractRepo, &lib.FixedOTP{Codes: []string{"8812", "4459"}}, contract.NewLogNotifier(log), contract.TrackerConfig{}, log)
	directory := users.NewDirectory(userRepo, log)
	board := demands.NewBoard(demandRepo, tracker, log)
	bot := assistant.NewAssistant(assistant.StaticGenerator{Text: "Namaste"}, 10, log)

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.AI.GeminiAPIKey = "secret-key"
	publicUrl, err := url.Parse(cfg.Web.PublicUrl)
	require.NoError(t, err)

	return NewHTTPHandler(tracker, directory, board, bot, analyzer, time.Second, cfg, publicUrl, log)
}

func doRequest(t *testing.T, r http.Handler, method, path, actorID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set(HeaderActorID, actorID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeContract(t *testing.T, w *httptest.ResponseRecorder) contractBody {
	var res contractBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func acceptDemand(t *testing.T, r http.Handler) contractBody {
	w := doRequest(t, r, http.MethodPost, "/demands/d1/accept", "f1", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeContract(t, w)
}

func TestHealthcheckAndConfig(t *testing.T) {
	r := handlerSetup(t, nil)

	w := doRequest(t, r, http.MethodGet, "/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "secret-key")
	require.Contains(t, w.Body.String(), config.BuildVersion)
}

func TestActorMiddleware(t *testing.T) {
	r := handlerSetup(t, nil)

	w := doRequest(t, r, http.MethodGet, "/contracts", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/contracts", "nobody", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/contracts", "p1", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	req.Header.Set(HeaderActorID, "f1")
	req.Header.Set(HeaderActorRole, "BUYER")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	w = doRequest(t, r, http.MethodGet, "/admin/disputes", "f1", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAcceptDemandCreatesContract(t *testing.T) {
	r := handlerSetup(t, nil)

	c := acceptDemand(t, r)
	require.Equal(t, contract.StatusSowing, c.Status)
	require.Equal(t, "d1", c.DemandID)
	require.Equal(t, 30, c.EscrowPercentage)
	require.Contains(t, c.Self, "/contracts/"+c.ID)

	w := doRequest(t, r, http.MethodGet, "/demands", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), `"id":"d1"`)

	w = doRequest(t, r, http.MethodPost, "/demands/d1/accept", "f1", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodPost, "/demands/d2/accept", "b2", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestGrowthUpdateAnalysisOutcomes(t *testing.T) {
	body := gin.H{"type": "harvest", "image": "data:image/png;base64," + testImage, "notes": "ready"}

	r := handlerSetup(t, analyzerFunc(healthyAnalyzer))
	c := acceptDemand(t, r)
	w := doRequest(t, r, http.MethodPost, "/contracts/"+c.ID+"/updates", "f1", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c = decodeContract(t, w)
	require.Equal(t, contract.StatusHarvestReady, c.Status)
	require.Equal(t, 92, *c.CurrentHealthScore)
	require.Equal(t, "data:image/png;base64,"+testImage, c.Updates[0].ImageURL)

	r = handlerSetup(t, analyzerFunc(func(ctx context.Context, req analysis.Request) (analysis.AIAnalysis, error) {
		return analysis.AIAnalysis{HealthScore: 90, FraudAlert: true}, nil
	}))
	c = acceptDemand(t, r)
	w = doRequest(t, r, http.MethodPost, "/contracts/"+c.ID+"/updates", "f1", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	r = handlerSetup(t, analyzerFunc(func(ctx context.Context, req analysis.Request) (analysis.AIAnalysis, error) {
		return analysis.AIAnalysis{}, errors.New("model overloaded")
	}))
	c = acceptDemand(t, r)
	w = doRequest(t, r, http.MethodPost, "/contracts/"+c.ID+"/updates", "f1", body)
	require.Equal(t, http.StatusBadGateway, w.Code)

	r = handlerSetup(t, nil)
	c = acceptDemand(t, r)
	w = doRequest(t, r, http.MethodPost, "/contracts/"+c.ID+"/updates", "f1", body)
	require.Equal(t, http.StatusBadGateway, w.Code)

	w = doRequest(t, r, http.MethodPost, "/contracts/"+c.ID+"/updates", "f1", gin.H{"type": "GROWTH", "image": "%%%"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/contracts/"+c.ID+"/updates", "b2", body)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestLifecycleOverHTTP(t *testing.T) {
	r := handlerSetup(t, analyzerFunc(healthyAnalyzer))
	c := acceptDemand(t, r)
	path := "/contracts/" + c.ID

	w := doRequest(t, r, http.MethodPost, path+"/packaging", "f1", gin.H{
		"packageCount":    40,
		"packageWeight":   800.5,
		"packagingType":   "Crate",
		"packagingPhotos": []string{"photo-1"},
		"checklist":       gin.H{"quality": true, "moisture": true, "damage": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c = decodeContract(t, w)
	require.Equal(t, contract.StatusPackaging, c.Status)
	require.Equal(t, "8812", c.PickupOTP)

	w = doRequest(t, r, http.MethodGet, path, "t1", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// d1 was posted by a buyer without an account
	w = doRequest(t, r, http.MethodPost, path+"/approve", "b1", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/contracts/c1/confirm", "b2", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodGet, "/contracts/c1", "b2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	c1 := decodeContract(t, w)
	require.Empty(t, c1.PickupOTP)

	steps := []struct {
		actor  string
		action string
		body   interface{}
		status contract.Status
	}{
		{"f1", "/packaging", gin.H{
			"packageCount":    10,
			"packageWeight":   200,
			"packagingPhotos": []string{"photo-1"},
			"checklist":       gin.H{"quality": true, "moisture": true, "damage": true},
		}, contract.StatusPackaging},
		{"b2", "/approve", nil, contract.StatusAwaitingDispatch},
		{"t1", "/accept", nil, contract.StatusTransitAssigned},
		{"t1", "/arrive-pickup", nil, contract.StatusReachedPickup},
		{"t1", "/pickup-otp", gin.H{"code": "4459"}, contract.StatusPickupCheckpoint},
		{"t1", "/checkpoint", gin.H{"photos": []string{"a", "b", "c"}, "videoProof": "vid", "condition": "good"}, contract.StatusCollected},
		{"t1", "/start-delivery", nil, contract.StatusInTransit},
		{"t1", "/arrive-destination", nil, contract.StatusReachedDestination},
		{"t1", "/delivery-otp", gin.H{"code": "8812"}, contract.StatusDelivered},
		{"b2", "/confirm", nil, contract.StatusCompleted},
	}
	for _, step := range steps {
		w = doRequest(t, r, http.MethodPost, "/contracts/c1"+step.action, step.actor, step.body)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", step.action, w.Body.String())
		c1 = decodeContract(t, w)
		require.Equal(t, step.status, c1.Status, step.action)

		switch step.action {
		case "/packaging":
			require.Equal(t, "4459", c1.PickupOTP)
		case "/approve":
			require.Equal(t, "8812", c1.DeliveryOTP)
			require.Equal(t, 100, c1.EscrowPercentage)
		case "/accept":
			require.Empty(t, c1.PickupOTP)
			require.Empty(t, c1.DeliveryOTP)
		}
	}

	w = doRequest(t, r, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats contract.StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.Rejected)
}

func TestWrongOTPIsRejected(t *testing.T) {
	r := handlerSetup(t, nil)

	w := doRequest(t, r, http.MethodPost, "/contracts/c1/packaging", "f1", gin.H{
		"packageCount":    10,
		"packageWeight":   200,
		"packagingPhotos": []string{"photo-1"},
		"checklist":       gin.H{"quality": true, "moisture": true, "damage": true},
	})
	require.Equal(t, http.StatusOK, w.Code)
	for _, action := range []struct{ actor, path string }{
		{"b2", "/approve"},
		{"t1", "/accept"},
		{"t1", "/arrive-pickup"},
	} {
		w = doRequest(t, r, http.MethodPost, "/contracts/c1"+action.path, action.actor, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/contracts/c1/pickup-otp", "t1", gin.H{"code": "0000"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(t, r, http.MethodPost, "/contracts/c1/pickup-otp", "t1", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisputeOverHTTP(t *testing.T) {
	r := handlerSetup(t, nil)

	actions := []struct {
		actor, path string
		body        interface{}
	}{
		{"f1", "/packaging", gin.H{
			"packageCount":    10,
			"packageWeight":   200,
			"packagingPhotos": []string{"photo-1"},
			"checklist":       gin.H{"quality": true, "moisture": true, "damage": true},
		}},
		{"b2", "/approve", nil},
		{"t1", "/accept", nil},
		{"t1", "/arrive-pickup", nil},
		{"t1", "/pickup-otp", gin.H{"code": "8812"}},
		{"t1", "/checkpoint", gin.H{"photos": []string{"a", "b", "c"}, "videoProof": "vid", "condition": "MINOR_DAMAGE"}},
		{"t1", "/start-delivery", nil},
		{"t1", "/arrive-destination", nil},
		{"t1", "/delivery-otp", gin.H{"code": "4459"}},
		{"b2", "/dispute", gin.H{"type": "quality", "comment": "bruised fruit"}},
	}
	for _, a := range actions {
		w := doRequest(t, r, http.MethodPost, "/contracts/c1"+a.path, a.actor, a.body)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", a.path, w.Body.String())
	}

	w := doRequest(t, r, http.MethodGet, "/admin/disputes", "admin1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var disputed []contractBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &disputed))
	require.Len(t, disputed, 1)
	require.Equal(t, "c1", disputed[0].ID)

	w = doRequest(t, r, http.MethodGet, "/contracts/c1/dispute-case", "t1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dc contract.DisputeCase
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dc))
	require.Equal(t, contract.DisputeQuality, dc.Buyer.Type)
	require.Equal(t, contract.ConditionMinorDamage, dc.Transporter.Condition)

	w = doRequest(t, r, http.MethodPost, "/contracts/c1/resolve", "admin1", gin.H{"resolution": "SOMETHING"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(t, r, http.MethodPost, "/contracts/c1/resolve", "b2", gin.H{"resolution": "REFUND_BUYER"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, "/contracts/c1/resolve", "admin1", gin.H{"resolution": "split_liability"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := decodeContract(t, w)
	require.Equal(t, contract.StatusResolved, c.Status)
	require.Equal(t, contract.ResolutionSplitLiability, c.Resolution.Resolution)
	require.True(t, c.Resolution.Settlement.FarmerAmount.Add(c.Resolution.Settlement.BuyerRefund).Equal(c.EscrowBalance))
}

func TestUserRegistrationAndApproval(t *testing.T) {
	r := handlerSetup(t, nil)

	w := doRequest(t, r, http.MethodPost, "/users/register", "", gin.H{
		"name":     "Sunita Devi",
		"role":     "farmer",
		"phone":    "+91 9123456780",
		"location": "Nashik, Maharashtra",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u users.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	require.Equal(t, users.StatusPending, u.Status)

	w = doRequest(t, r, http.MethodPost, "/users/login", "", gin.H{"identifier": "+91 9123456780", "role": "FARMER"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, "/users/register", "", gin.H{
		"name":     "Sunita Devi",
		"role":     "FARMER",
		"phone":    "+91 9123456780",
		"location": "Nashik, Maharashtra",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodGet, "/users/pending", "admin1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), u.ID)

	w = doRequest(t, r, http.MethodPost, "/users/"+u.ID+"/approve", "admin1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, "/users/login", "", gin.H{"identifier": "+91 9123456780", "role": "FARMER"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, "/users/login", "", gin.H{"identifier": "+91 9123456780", "role": "BUYER"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/users/"+u.ID+"/deactivate", "admin1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/contracts", u.ID, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostDemand(t *testing.T) {
	r := handlerSetup(t, nil)

	w := doRequest(t, r, http.MethodPost, "/demands", "b2", gin.H{
		"cropName":       "Nagpur Orange",
		"quantity":       "500",
		"targetPrice":    "40",
		"shippingBudget": "2000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"totalValue":"20000"`)

	w = doRequest(t, r, http.MethodPost, "/demands", "f1", gin.H{"cropName": "Nagpur Orange", "quantity": "1", "targetPrice": "1"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, "/demands", "b2", gin.H{"cropName": "Nagpur Orange", "quantity": "0", "targetPrice": "40"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAssistantChat(t *testing.T) {
	r := handlerSetup(t, nil)

	w := doRequest(t, r, http.MethodGet, "/assistant/messages?sessionId=s1", "f1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), assistant.WelcomeText)

	w = doRequest(t, r, http.MethodPost, "/assistant/messages", "f1", gin.H{"sessionId": "s1", "message": "when is pickup?", "contractId": "c1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Namaste")

	w = doRequest(t, r, http.MethodPost, "/assistant/messages", "t1", gin.H{"sessionId": "s1", "message": "hi", "contractId": "c1"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodGet, "/assistant/messages?sessionId=s1", "f1", nil)
	var history []assistant.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 2)

	w = doRequest(t, r, http.MethodGet, "/assistant/messages?sessionId=s1", "b2", nil)
	require.Contains(t, w.Body.String(), assistant.WelcomeText)
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{lib.WrapErrorf(contract.ErrContractNotFound, "c9"), http.StatusNotFound},
		{lib.WrapErrorf(contract.ErrInvalidTransition, "x"), http.StatusConflict},
		{contract.ErrActorNotAllowed, http.StatusForbidden},
		{contract.ErrFraudDetected, http.StatusUnprocessableEntity},
		{contract.ErrAnalysisUnavailable, http.StatusBadGateway},
		{users.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, ErrorStatus(tc.err), tc.err.Error())
	}
}
