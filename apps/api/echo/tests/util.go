package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fitsenior/backend/apps/api/di"
	. "github.com/fitsenior/backend/apps/api/echo"
	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/student"
	"github.com/fitsenior/backend/core/user"
	emailsvc "github.com/fitsenior/backend/services/email"
	logsvc "github.com/fitsenior/backend/services/logger"
	metricsvc "github.com/fitsenior/backend/services/metrics"
	realtimesvc "github.com/fitsenior/backend/services/realtime"
	storagesvc "github.com/fitsenior/backend/services/storage"
	inmemdb "github.com/fitsenior/backend/storage/database/inmem"
	testutil "github.com/fitsenior/backend/tests"
)

var (
	errMissingToken = httpErr{Error: "token not provided"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func testConfig() *core.Config {
	return &core.Config{
		Env:             "TEST",
		Build:           "test",
		AppName:         "FitSenior",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:5173",
		Server: core.ServerConfig{
			APIPrefix:                 "/api",
			AllowedOrigins:            []string{"*"},
			DisableReqLogs:            true,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			PasswordResetTimeoutDelta: 72 * time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "memory"},
		Storage: core.StorageConfig{
			Region:        "us-east-1",
			Bucket:        "fitsenior",
			BaseEndpoint:  "http://127.0.0.1:9000",
			AccessKey:     "minioadmin",
			SecretKey:     "minioadmin",
			PublicBaseURL: "http://127.0.0.1:9000/fitsenior",
			PresignExpiry: 10 * time.Minute,
		},
	}
}

// testApp is a server over a fresh in-memory database.
type testApp struct {
	Server
	conf    *core.Config
	repos   di.Repositories
	mailSvc *emailsvc.ServiceMock
	metrics *metricsvc.Manager
	auth    *Auth
}

func setup(t *testing.T) *testApp {
	return setupWithHub(t, nil)
}

// setupWithHub also mounts the websocket endpoint when hub is not nil.
func setupWithHub(t *testing.T, hub *realtimesvc.Hub) *testApp {
	conf := testConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	fileStorage, err := storagesvc.NewS3Storage(context.Background(), conf.Storage)
	if err != nil {
		t.Fatalf("NewS3Storage() failed: %v", err)
	}

	app := &testApp{
		conf:    conf,
		repos:   di.MemoryRepositories(inmemdb.Open()),
		mailSvc: emailsvc.NewServiceMock(conf),
		metrics: metricsvc.NewManager(),
		auth:    NewAuth(conf),
	}
	app.Server = NewServer(di.NewServerDeps(di.Infra{
		Conf:    conf,
		Logger:  logger,
		MailSvc: app.mailSvc,
		Storage: fileStorage,
		Metrics: app.metrics,
		Hub:     hub,
	}, app.repos))
	return app
}

func (app *testApp) createUser(t *testing.T, name, email string, isAdmin ...bool) user.User {
	return testutil.CreateUser(t, app.repos.User, app.repos.Profile, name, email, "Secret123", true, isAdmin...)
}

func (app *testApp) createStudent(t *testing.T, name, email string) (user.User, student.Student) {
	usr := app.createUser(t, name, email)
	return usr, testutil.CreateStudent(t, app.repos.Student, usr, name)
}

func (app *testApp) createProfessional(t *testing.T, name, email string) (user.User, professional.Professional) {
	usr := app.createUser(t, name, email)
	return usr, testutil.CreateProfessional(t, app.repos.Professional, usr, name)
}

func (app *testApp) createClass(t *testing.T, prof professional.Professional, title string, capacity int) class.Class {
	return testutil.CreateClass(t, app.repos.Class, prof, title, capacity)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	token, err := app.auth.Token(usr)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// do serves one request and returns its recorder.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshall() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCode(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	checkCode(t, tt, rec)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runTests serves every test, checking the data only when wantData is set.
func runTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt, rec)
			}
		})
	}
}
