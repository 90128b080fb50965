package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/omnichat/orchestrator/internal/agent"
	"github.com/omnichat/orchestrator/internal/cache"
	"github.com/omnichat/orchestrator/internal/conversation"
	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/nlg"
	"github.com/omnichat/orchestrator/internal/service"
	"github.com/omnichat/orchestrator/internal/session"
	"github.com/omnichat/orchestrator/tests/helpers"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st := helpers.NewTestSQLiteStore(t)
	helpers.SeedDemo(t, st)

	sessions := session.NewManager(st, cache.Noop{}, 24*time.Hour)
	conversations := conversation.NewManager(st, sessions)
	gateway := agent.GatewayFunc(func(ctx context.Context, req agent.ChargeRequest) bool { return true })
	agents := service.Agents{
		Recommendation: agent.NewRecommendationAgent(st),
		Inventory:      agent.NewInventoryAgent(st),
		Payment:        agent.NewPaymentAgent(st, gateway, nil, 3, time.Millisecond),
		Fulfillment:    agent.NewFulfillmentAgent(st),
		Loyalty:        agent.NewLoyaltyAgent(st),
		PostPurchase:   agent.NewPostPurchaseAgent(st),
	}
	svc := service.New(st, sessions, conversations, agents, nlg.NewStub(), nil)
	return NewHandler(svc)
}

func TestPostChat(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	reqBody, _ := json.Marshal(domain.ChatRequest{
		Message: "show me formal shirts",
		UserID:  "user-priya-demo",
		Channel: domain.ChannelWeb,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.PostChat(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, domain.IntentRecommendation, resp.Intent)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Reply)
}

func TestPostChatValidation(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	reqBody, _ := json.Marshal(domain.ChatRequest{Message: ""})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.PostChat(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationNotFound(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/sessions/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/chat/sessions/:session_id")
	c.SetParamNames("session_id")
	c.SetParamValues("missing")

	err := handler.GetConversation(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatThenFetchConversation(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	// Seed one exchange via the chat endpoint.
	reqBody, _ := json.Marshal(domain.ChatRequest{Message: "hello", UserID: "user-priya-demo"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	assert.NoError(t, handler.PostChat(e.NewContext(req, rec)))

	var chat domain.ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &chat)

	req = httptest.NewRequest(http.MethodGet, "/v1/chat/sessions/"+chat.SessionID, nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/chat/sessions/:session_id")
	c.SetParamNames("session_id")
	c.SetParamValues(chat.SessionID)

	assert.NoError(t, handler.GetConversation(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var conv domain.Conversation
	json.Unmarshal(rec.Body.Bytes(), &conv)
	assert.Len(t, conv.Messages, 2)
}

func TestSwitchChannelEndpoint(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	reqBody, _ := json.Marshal(domain.ChatRequest{Message: "hello", UserID: "user-priya-demo"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	assert.NoError(t, handler.PostChat(e.NewContext(req, rec)))
	var chat domain.ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &chat)

	body, _ := json.Marshal(switchChannelRequest{Channel: domain.ChannelKiosk})
	req = httptest.NewRequest(http.MethodPost, "/v1/chat/sessions/"+chat.SessionID+"/channel", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/chat/sessions/:session_id/channel")
	c.SetParamNames("session_id")
	c.SetParamValues(chat.SessionID)

	assert.NoError(t, handler.SwitchChannel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var conv domain.Conversation
	json.Unmarshal(rec.Body.Bytes(), &conv)
	assert.Equal(t, domain.ChannelKiosk, conv.Channel)
	assert.Len(t, conv.Messages, 2)
}

func TestListProductsEndpoint(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/products?category=formal&max_price=2000", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, handler.ListProducts(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []domain.Product `json:"products"`
		Count    int              `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, 2, resp.Count)
}

func TestOrderEndpoints(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	body, _ := json.Marshal(createOrderRequest{
		UserID: "user-priya-demo",
		Items:  []service.OrderLine{{SKU: "FS123", Quantity: 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	assert.NoError(t, handler.CreateOrder(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	json.Unmarshal(rec.Body.Bytes(), &order)
	assert.Equal(t, 1799.0, order.Subtotal)

	req = httptest.NewRequest(http.MethodGet, "/v1/orders/"+order.OrderID, nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/orders/:order_id")
	c.SetParamNames("order_id")
	c.SetParamValues(order.OrderID)

	assert.NoError(t, handler.GetOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown order.
	req = httptest.NewRequest(http.MethodGet, "/v1/orders/nope", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/v1/orders/:order_id")
	c.SetParamNames("order_id")
	c.SetParamValues("nope")
	assert.NoError(t, handler.GetOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
