package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/message"
	realtimesvc "github.com/fitsenior/backend/services/realtime"
)

func Test_server_public(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.createUser(t, "Ana", "ana@test.br"))

	runTests(t, app, []httpTest{
		{
			name: "home", path: "/", wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Welcome to FitSenior API!", "version": "test", "endpoints": {"health": "/health", "api": "/api"}}`),
		},
		{name: "health", path: "/health", wantCode: http.StatusOK, wantData: []byte(`{"status": "ok"}`)},
		{name: "trailing slash", path: "/health/", wantCode: http.StatusOK},
		{name: "unknown api route needs a token", path: "/api/nope", wantCode: http.StatusUnauthorized},
		{name: "unknown api route", path: "/api/nope", token: token, wantCode: http.StatusNotFound},
	})

	rec := app.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fitsenior_http_requests_total{endpoint="/health",method="GET",status_code="200"} 2`)
	assert.Contains(t, rec.Body.String(), "fitsenior_http_request_duration_seconds_bucket")
}

func Test_realtimeApi(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := realtimesvc.NewHub(nil)
	go hub.Run(ctx)

	app := setupWithHub(t, hub)
	srv := httptest.NewServer(app)
	defer srv.Close()

	proUsr, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	stuUsr, _ := app.createStudent(t, "Lurdes", "lurdes@test.br")
	cls := app.createClass(t, prof, "Yoga", 0)
	app.enroll(t, stuUsr, cls.ID)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+app.token(t, proUsr), nil)
	require.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected(proUsr.ID) != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, hub.Connected(proUsr.ID))

	rec := app.do(http.MethodPost, "/api/messages", app.token(t, stuUsr), marshallObj(t, message.NewMessage{RecipientID: proUsr.ID, Content: "Oi!"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt struct {
		Type    string          `json:"type"`
		Payload message.Message `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, core.EventMessageNew, evt.Type)
	assert.Equal(t, "Oi!", evt.Payload.Content)
	assert.Equal(t, stuUsr.ID, evt.Payload.SenderID)
}
