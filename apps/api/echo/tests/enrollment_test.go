package tests

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/user"
	reportsvc "github.com/fitsenior/backend/services/reports"
)

func enrollBody(classID string) []byte {
	return []byte(fmt.Sprintf(`{"class_id": %q}`, classID))
}

func (app *testApp) enroll(t *testing.T, usr user.User, classID string) enrollment.Enrollment {
	rec := app.do(http.MethodPost, "/api/enrollments", app.token(t, usr), enrollBody(classID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e enrollment.Enrollment
	unmarshall(t, rec, &e)
	return e
}

func Test_enrollmentApi_enroll(t *testing.T) {
	app := setup(t)
	_, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	stuUsr, stu := app.createStudent(t, "Lurdes", "lurdes@test.br")
	plain := app.createUser(t, "Plain", "plain@test.br")
	third := app.createUser(t, "Third", "third@test.br")

	cls := app.createClass(t, prof, "Yoga", 2)
	stuToken := app.token(t, stuUsr)

	runTests(t, app, []httpTest{
		{
			name: "class_id required", method: http.MethodPost, path: "/api/enrollments", token: stuToken,
			body: []byte(`{"class_id": "  "}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "class_id is required"}),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/api/enrollments", token: stuToken,
			body: enrollBody("nope"), wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "class not found"}),
		},
	})

	e := app.enroll(t, stuUsr, cls.ID)
	assert.Equal(t, enrollment.StatusEnrolled, e.Status)
	assert.Equal(t, stu.ID, e.StudentID)

	runTests(t, app, []httpTest{{
		name: "already enrolled", method: http.MethodPost, path: "/api/enrollments", token: stuToken,
		body: enrollBody(cls.ID), wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "already enrolled in this class"}),
	}})

	// users without a student record may enroll too
	e2 := app.enroll(t, plain, cls.ID)
	assert.Empty(t, e2.StudentID)

	runTests(t, app, []httpTest{{
		name: "class full", method: http.MethodPost, path: "/api/enrollments", token: app.token(t, third),
		body: enrollBody(cls.ID), wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "class is full"}),
	}})

	// confirmation emails
	sent := app.mailSvc.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, stuUsr.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Yoga")

	// metrics by result
	rec := app.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fitsenior_enrollments_total{result="enrolled"} 2`)
	assert.Contains(t, rec.Body.String(), `fitsenior_enrollments_total{result="full"} 1`)
	assert.Contains(t, rec.Body.String(), `fitsenior_enrollments_total{result="duplicate"} 1`)
	assert.Contains(t, rec.Body.String(), `fitsenior_enrollments_total{result="not_found"} 1`)

	// a cancelled enrollment frees its spot
	proUsr, err := app.repos.User.GetUser(context.Background(), user.GetFilter{Email: "carlos@test.br"})
	require.NoError(t, err)
	rec = app.do(http.MethodPut, "/api/enrollments/"+e2.ID+"/status", app.token(t, proUsr), []byte(`{"status": "cancelled"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app.enroll(t, third, cls.ID)
}

func Test_enrollmentApi_concurrentEnroll(t *testing.T) {
	app := setup(t)
	_, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	cls := app.createClass(t, prof, "Yoga", 2)

	const n = 10
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = app.token(t, app.createUser(t, fmt.Sprintf("Student %d", i), fmt.Sprintf("s%d@test.br", i)))
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[int]int)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			rec := app.do(http.MethodPost, "/api/enrollments", token, enrollBody(cls.ID))
			mu.Lock()
			codes[rec.Code]++
			mu.Unlock()
		}(tokens[i])
	}
	wg.Wait()

	assert.Equal(t, 2, codes[http.StatusCreated], "codes: %v", codes)
	assert.Equal(t, n-2, codes[http.StatusBadRequest], "codes: %v", codes)

	count, err := app.repos.Enrollment.CountActiveEnrollments(context.Background(), cls.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func Test_enrollmentApi_ownership(t *testing.T) {
	app := setup(t)
	proUsr, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	otherProUsr, _ := app.createProfessional(t, "Bia Rocha", "bia@test.br")
	stuUsr, _ := app.createStudent(t, "Lurdes", "lurdes@test.br")
	outsider, _ := app.createStudent(t, "Zé", "ze@test.br")

	cls := app.createClass(t, prof, "Yoga", 0)
	e := app.enroll(t, stuUsr, cls.ID)

	var items []enrollment.Item
	rec := app.do(http.MethodGet, "/api/enrollments", app.token(t, stuUsr))
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Yoga", items[0].Class.Title)
	assert.Equal(t, "Carlos Lima", items[0].ProfessionalName)

	var members []enrollment.Member
	rec = app.do(http.MethodGet, "/api/enrollments/class/"+cls.ID, app.token(t, proUsr))
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "Lurdes", members[0].StudentName)

	runTests(t, app, []httpTest{
		{name: "members as enrolled user", path: "/api/enrollments/class/" + cls.ID, token: app.token(t, stuUsr), wantCode: http.StatusOK},
		{name: "members as outsider", path: "/api/enrollments/class/" + cls.ID, token: app.token(t, outsider), wantCode: http.StatusForbidden},
		{
			name: "status by another professional", method: http.MethodPut, path: "/api/enrollments/" + e.ID + "/status",
			token: app.token(t, otherProUsr), body: []byte(`{"status": "completed"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "invalid status", method: http.MethodPut, path: "/api/enrollments/" + e.ID + "/status",
			token: app.token(t, proUsr), body: []byte(`{"status": "paused"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "delete someone else's", method: http.MethodDelete, path: "/api/enrollments/" + e.ID,
			token: app.token(t, outsider), wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "enrollment not found"}),
		},
		{name: "delete own", method: http.MethodDelete, path: "/api/enrollments/" + e.ID, token: app.token(t, stuUsr), wantCode: http.StatusNoContent},
		{name: "delete again", method: http.MethodDelete, path: "/api/enrollments/" + e.ID, token: app.token(t, stuUsr), wantCode: http.StatusNotFound},
	})
}

func Test_attendanceApi(t *testing.T) {
	app := setup(t)
	proUsr, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	ana, _ := app.createStudent(t, "Ana", "ana@test.br")
	bea, _ := app.createStudent(t, "Bea", "bea@test.br")

	cls := app.createClass(t, prof, "Yoga", 0)
	otherCls := app.createClass(t, prof, "Pilates", 0)
	eAna := app.enroll(t, ana, cls.ID)
	eBea := app.enroll(t, bea, cls.ID)
	eOther := app.enroll(t, ana, otherCls.ID)

	proToken := app.token(t, proUsr)
	path := "/api/classes/" + cls.ID + "/attendance"
	rollCall := func(date string, marks ...attendance.Mark) []byte {
		return marshallObj(t, map[string]interface{}{"date": date, "records": marks})
	}

	runTests(t, app, []httpTest{
		{
			name: "owner only", method: http.MethodPut, path: path, token: app.token(t, ana),
			body: rollCall("2026-03-02", attendance.Mark{EnrollmentID: eAna.ID, Present: true}), wantCode: http.StatusForbidden,
		},
		{
			name: "bad date", method: http.MethodPut, path: path, token: proToken,
			body: rollCall("02/03/2026", attendance.Mark{EnrollmentID: eAna.ID, Present: true}), wantCode: http.StatusBadRequest,
		},
		{name: "no records", method: http.MethodPut, path: path, token: proToken, body: rollCall("2026-03-02"), wantCode: http.StatusBadRequest},
		{
			name: "enrollment of another class", method: http.MethodPut, path: path, token: proToken,
			body: rollCall("2026-03-02", attendance.Mark{EnrollmentID: eOther.ID, Present: true}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "enrollment does not belong to this class"}),
		},
		{
			name: "day 1", method: http.MethodPut, path: path, token: proToken, wantCode: http.StatusOK,
			body: rollCall("2026-03-02", attendance.Mark{EnrollmentID: eAna.ID, Present: true}, attendance.Mark{EnrollmentID: eBea.ID}),
		},
		{
			name: "day 2", method: http.MethodPut, path: path, token: proToken, wantCode: http.StatusOK,
			body: rollCall("2026-03-04", attendance.Mark{EnrollmentID: eAna.ID}, attendance.Mark{EnrollmentID: eBea.ID, Present: true}),
		},
		{
			name: "day 2 again (upsert)", method: http.MethodPut, path: path, token: proToken, wantCode: http.StatusOK,
			body: rollCall("2026-03-04", attendance.Mark{EnrollmentID: eAna.ID, Present: true}),
		},
		{name: "list bad date", path: path + "?date=yesterday", token: proToken, wantCode: http.StatusBadRequest},
	})

	var records []attendance.ClassRecord
	rec := app.do(http.MethodGet, path, proToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &records)
	assert.Len(t, records, 4)

	rec = app.do(http.MethodGet, path+"?date=2026-03-04", proToken)
	unmarshall(t, rec, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "Ana", records[0].StudentName)
	assert.True(t, records[0].Present)

	var freq attendance.Frequency
	rec = app.do(http.MethodGet, "/api/enrollments/"+eAna.ID+"/attendance", app.token(t, ana))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &freq)
	assert.Equal(t, 2, freq.Total)
	assert.Equal(t, 2, freq.Present)
	assert.Equal(t, float64(100), freq.Rate)

	runTests(t, app, []httpTest{
		{name: "frequency of the class owner", path: "/api/enrollments/" + eBea.ID + "/attendance", token: proToken, wantCode: http.StatusOK},
		{name: "frequency of someone else", path: "/api/enrollments/" + eBea.ID + "/attendance", token: app.token(t, ana), wantCode: http.StatusForbidden},
	})

	rec = app.do(http.MethodGet, path+"/export", proToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, reportsvc.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance-Yoga.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows(reportsvc.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student", "02/03/2026", "04/03/2026", "Frequency (%)"}, rows[0])
	assert.Equal(t, []string{"Ana", "P", "P", "100"}, rows[1])
	assert.Equal(t, []string{"Bea", "F", "P", "50"}, rows[2])
}
