package tests

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core/payment"
	"github.com/fitsenior/backend/core/upload"
)

func Test_paymentApi(t *testing.T) {
	app := setup(t)
	proUsr, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	otherProUsr, _ := app.createProfessional(t, "Bia Rocha", "bia@test.br")
	stuUsr, _ := app.createStudent(t, "Lurdes", "lurdes@test.br")
	nobody := app.createUser(t, "Nobody", "nobody@test.br")

	yoga := app.createClass(t, prof, "Yoga", 0)
	pilates := app.createClass(t, prof, "Pilates", 0)
	eYoga := app.enroll(t, stuUsr, yoga.ID)
	ePilates := app.enroll(t, stuUsr, pilates.ID)

	proToken := app.token(t, proUsr)
	newPayment := func(enrollmentID string, amount float64, date time.Time, status string) []byte {
		return marshallObj(t, payment.NewPayment{EnrollmentID: enrollmentID, Amount: amount, PaymentDate: &date, Status: status})
	}
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 15, 30, 0, 0, time.UTC) }

	runTests(t, app, []httpTest{
		{
			name: "amount must be positive", method: http.MethodPost, path: "/api/payments", token: proToken,
			body: newPayment(eYoga.ID, 0, day(time.March, 10), ""), wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid status", method: http.MethodPost, path: "/api/payments", token: proToken,
			body: newPayment(eYoga.ID, 10, day(time.March, 10), "refunded"), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown enrollment", method: http.MethodPost, path: "/api/payments", token: proToken,
			body: newPayment("nope", 10, day(time.March, 10), ""), wantCode: http.StatusNotFound,
		},
		{
			name: "another professional's class", method: http.MethodPost, path: "/api/payments", token: app.token(t, otherProUsr),
			body: newPayment(eYoga.ID, 10, day(time.March, 10), ""), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
	})

	rec := app.do(http.MethodPost, "/api/payments", proToken, newPayment(eYoga.ID, 80, day(time.March, 10), ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p payment.Payment
	unmarshall(t, rec, &p)
	assert.Equal(t, payment.StatusPaid, p.Status)
	assert.Equal(t, yoga.ID, p.ClassID)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), p.PaymentDate.UTC())

	for _, body := range [][]byte{
		newPayment(ePilates.ID, 40.5, day(time.March, 20), payment.StatusPaid),
		newPayment(ePilates.ID, 60, day(time.July, 1), payment.StatusPaid),
		newPayment(ePilates.ID, 10, day(time.July, 2), payment.StatusPending),
		newPayment(ePilates.ID, 99, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), payment.StatusPaid),
	} {
		rec = app.do(http.MethodPost, "/api/payments", proToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var list []payment.Payment
	rec = app.do(http.MethodGet, "/api/payments", proToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &list)
	require.Len(t, list, 5)
	assert.Equal(t, "Pilates", list[0].ClassTitle, "newest payment first")
	assert.Equal(t, "Lurdes", list[0].StudentName)

	rec = app.do(http.MethodGet, "/api/payments?"+url.Values{"class_id": {yoga.ID}}.Encode(), app.token(t, stuUsr))
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	runTests(t, app, []httpTest{
		{name: "other professional sees nothing", path: "/api/payments", token: app.token(t, otherProUsr), wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "no role", path: "/api/payments", token: app.token(t, nobody), wantCode: http.StatusForbidden},
		{name: "summary requires professional", path: "/api/payments/summary", token: app.token(t, stuUsr), wantCode: http.StatusForbidden},
		{
			name: "invalid year", path: "/api/payments/summary?year=abc", token: proToken,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid year"}),
		},
		{name: "year out of range", path: "/api/payments/summary?year=20250", token: proToken, wantCode: http.StatusBadRequest},
	})

	var s payment.Summary
	rec = app.do(http.MethodGet, "/api/payments/summary?year=2025", proToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &s)
	assert.Equal(t, 2025, s.Year)
	require.Len(t, s.Monthly, 12)
	assert.Equal(t, 120.5, s.Monthly[2].Total)
	assert.Equal(t, 60.0, s.Monthly[6].Total)
	assert.Equal(t, 180.5, s.Total)
	assert.Equal(t, 3, s.Count)

	rec = app.do(http.MethodGet, "/api/payments/summary", proToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &s)
	assert.Equal(t, time.Now().UTC().Year(), s.Year)
}

func Test_uploadApi(t *testing.T) {
	app := setup(t)
	stuUsr, _ := app.createStudent(t, "Lurdes", "lurdes@test.br")
	proUsr, _ := app.createProfessional(t, "Carlos Lima", "carlos@test.br")

	req := func(kind, contentType string) []byte {
		return marshallObj(t, upload.Request{Kind: kind, ContentType: contentType})
	}
	runTests(t, app, []httpTest{
		{
			name: "unknown kind", method: http.MethodPost, path: "/api/uploads", token: app.token(t, stuUsr),
			body: req("selfie", "image/png"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"kind": "kind must be avatar or health_certificate"}),
		},
		{
			name: "content type not allowed", method: http.MethodPost, path: "/api/uploads", token: app.token(t, stuUsr),
			body: req(upload.KindAvatar, "application/pdf"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"content_type": "content type not allowed"}),
		},
		{
			name: "certificates are for students", method: http.MethodPost, path: "/api/uploads", token: app.token(t, proUsr),
			body: req(upload.KindHealthCertificate, "application/pdf"), wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "health certificates are for students only"}),
		},
		{name: "no token", method: http.MethodPost, path: "/api/uploads", body: req(upload.KindAvatar, "image/png"), wantCode: http.StatusUnauthorized},
	})

	rec := app.do(http.MethodPost, "/api/uploads", app.token(t, stuUsr), req(" Health_Certificate ", "application/PDF"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ticket upload.Ticket
	unmarshall(t, rec, &ticket)
	assert.True(t, strings.HasPrefix(ticket.Key, upload.KindHealthCertificate+"/"+stuUsr.ID+"/"), ticket.Key)
	assert.True(t, strings.HasSuffix(ticket.Key, ".pdf"), ticket.Key)
	assert.Equal(t, app.conf.Storage.PublicBaseURL+"/"+ticket.Key, ticket.URL)

	u, err := url.Parse(ticket.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Contains(t, u.Path, ticket.Key)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))

	rec = app.do(http.MethodPost, "/api/uploads", app.token(t, proUsr), req(upload.KindAvatar, "image/webp"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &ticket)
	assert.True(t, strings.HasSuffix(ticket.Key, ".webp"), ticket.Key)
}
