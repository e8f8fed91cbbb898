package tests

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/session"
	"github.com/fitsenior/backend/core/user"
)

func Test_meApi_onboarding(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Dona Lurdes", "lurdes@test.br")
	token := app.token(t, usr)

	var sess session.Session
	rec := app.do(http.MethodGet, "/api/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &sess)
	assert.Equal(t, session.RoleNone, sess.Role)
	assert.Equal(t, session.StateOnboarding, sess.State)
	assert.Nil(t, sess.Student)

	student := []byte(`{
		"full_name": "Lurdes Souza", "gender": "female", "phone": "+55 11 90000-0000",
		"email": "lurdes@test.br", "cpf": "529.982.247-25", "address": "Rua A, 1",
		"birth_date": "1948-05-20T00:00:00Z"
	}`)
	runTests(t, app, []httpTest{
		{name: "student role required", path: "/api/students/me", token: token, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{
			name: "invalid cpf", method: http.MethodPost, path: "/api/students", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"full_name": "Lurdes", "gender": "female", "phone": "1", "email": "lurdes@test.br",
				"cpf": "111.111.111-11", "address": "Rua A", "birth_date": "1948-05-20T00:00:00Z"}`),
			wantData: marshallObj(t, map[string]string{"cpf": "invalid CPF"}),
		},
		{name: "onboard student", method: http.MethodPost, path: "/api/students", token: token, body: student, wantCode: http.StatusCreated},
		{
			name: "role already assigned", method: http.MethodPost, path: "/api/professionals", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"full_name": "Lurdes", "email": "lurdes@test.br", "phone": "1", "cpf": "529.982.247-25",
				"cref": "000001-G/SP", "address": "Rua A", "birth_date": "1948-05-20T00:00:00Z", "gender": "female"}`),
			wantData: marshallObj(t, httpErr{Error: "role already assigned"}),
		},
		{name: "student record", path: "/api/students/me", token: token, wantCode: http.StatusOK},
		{name: "professional role required", path: "/api/professionals/me", token: token, wantCode: http.StatusForbidden},
	})

	rec = app.do(http.MethodGet, "/api/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &sess)
	assert.Equal(t, session.RoleStudent, sess.Role)
	assert.Equal(t, session.StateReady, sess.State)
	require.NotNil(t, sess.Student)
	assert.Equal(t, "Lurdes Souza", sess.Student.FullName)

	rec = app.do(http.MethodPut, "/api/me", token, []byte(`{"phone": " +55 11 91111-1111 "}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.do(http.MethodGet, "/api/me", token)
	unmarshall(t, rec, &sess)
	assert.Equal(t, "+55 11 91111-1111", sess.Profile.Phone)
	assert.Equal(t, "Dona Lurdes", sess.Profile.FullName)
}

func Test_meApi_professionalCard(t *testing.T) {
	app := setup(t)
	usr, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	other := app.createUser(t, "Other", "other@test.br")

	rec := app.do(http.MethodGet, "/api/professionals/"+prof.ID, app.token(t, other))
	require.Equal(t, http.StatusOK, rec.Code)
	var card map[string]interface{}
	unmarshall(t, rec, &card)
	assert.Equal(t, "Carlos Lima", card["full_name"])
	assert.Equal(t, usr.ID, card["user_id"])
	assert.NotContains(t, card, "cpf")
	assert.NotContains(t, card, "email")

	runTests(t, app, []httpTest{{
		name: "unknown professional", path: "/api/professionals/nope", token: app.token(t, other),
		wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "professional not found"}),
	}})
}

func Test_classApi(t *testing.T) {
	app := setup(t)
	proUsr, prof := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	otherProUsr, _ := app.createProfessional(t, "Bia Rocha", "bia@test.br")
	stuUsr, _ := app.createStudent(t, "Lurdes", "lurdes@test.br")
	nobody := app.createUser(t, "Nobody", "nobody@test.br")

	proToken := app.token(t, proUsr)
	stuToken := app.token(t, stuUsr)

	newClass := func(title, level string, capacity int) []byte {
		return marshallObj(t, class.NewClass{
			Title:    title,
			Date:     time.Now().Add(48 * time.Hour).UTC(),
			Capacity: capacity,
			Level:    level,
			Location: "Parque Villa-Lobos",
			Category: "Yoga",
		})
	}

	runTests(t, app, []httpTest{
		{
			name: "professional record required", method: http.MethodPost, path: "/api/classes", token: app.token(t, nobody),
			body: newClass("Yoga", "", 10), wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "professional not found, complete your registration first"}),
		},
		{
			name: "title required", method: http.MethodPost, path: "/api/classes", token: proToken,
			body: newClass("  ", "", 10), wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid level", method: http.MethodPost, path: "/api/classes", token: proToken,
			body: newClass("Yoga", "expert", 10), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"level": "level must be one of [beginner intermediate advanced]"}),
		},
		{
			name: "negative capacity", method: http.MethodPost, path: "/api/classes", token: proToken,
			body: newClass("Yoga", "", -1), wantCode: http.StatusBadRequest,
		},
	})

	rec := app.do(http.MethodPost, "/api/classes", proToken, newClass("Yoga suave", "", 2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created class.Class
	unmarshall(t, rec, &created)
	assert.Equal(t, prof.ID, created.ProfessionalID)
	assert.Equal(t, class.LevelBeginner, created.Level)

	other := app.createClass(t, prof, "Hidroginástica", 0)

	var detail class.Detail
	rec = app.do(http.MethodGet, "/api/classes/"+created.ID, stuToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &detail)
	assert.Equal(t, "Carlos Lima", detail.ProfessionalName)
	assert.Equal(t, proUsr.ID, detail.ProfessionalUserID)
	require.NotNil(t, detail.AvailableSpots)
	assert.Equal(t, 2, *detail.AvailableSpots)

	var list []class.Detail
	rec = app.do(http.MethodGet, "/api/classes?"+url.Values{"search": {"hidro"}}.Encode(), stuToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, other.ID, list[0].ID)
	assert.Nil(t, list[0].AvailableSpots)

	rec = app.do(http.MethodGet, "/api/classes?ordering=-created_at", stuToken)
	unmarshall(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID)

	rec = app.do(http.MethodGet, "/api/classes/mine", proToken)
	unmarshall(t, rec, &list)
	assert.Len(t, list, 2)

	runTests(t, app, []httpTest{
		{name: "mine requires professional", path: "/api/classes/mine", token: stuToken, wantCode: http.StatusForbidden},
		{
			name: "unknown class", path: "/api/classes/nope", token: stuToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "class not found"}),
		},
		{
			name: "update by another professional", method: http.MethodPut, path: "/api/classes/" + created.ID,
			token: app.token(t, otherProUsr), body: []byte(`{"title": "Mine now"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "update missing class", method: http.MethodPut, path: "/api/classes/nope",
			token: proToken, body: []byte(`{"title": "x"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "update", method: http.MethodPut, path: "/api/classes/" + created.ID,
			token: proToken, body: []byte(`{"title": "Yoga na praça", "capacity": 5}`), wantCode: http.StatusOK,
		},
		{
			name: "update level in any case", method: http.MethodPut, path: "/api/classes/" + created.ID,
			token: proToken, body: []byte(`{"level": " Advanced "}`), wantCode: http.StatusOK,
		},
		{
			name: "update unknown level", method: http.MethodPut, path: "/api/classes/" + created.ID,
			token: proToken, body: []byte(`{"level": "expert"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"level": "level must be one of [beginner intermediate advanced]"}),
		},
		{name: "delete by student", method: http.MethodDelete, path: "/api/classes/" + other.ID, token: stuToken, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/api/classes/" + other.ID, token: proToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/api/classes/" + other.ID, token: proToken, wantCode: http.StatusNotFound},
	})
}

func Test_classApi_filters(t *testing.T) {
	app := setup(t)
	proUsr, _ := app.createProfessional(t, "Carlos Lima", "carlos@test.br")
	otherProUsr, otherProf := app.createProfessional(t, "Bia Rocha", "bia@test.br")
	stuUsr, _ := app.createStudent(t, "Lurdes", "lurdes@test.br")
	stuToken := app.token(t, stuUsr)

	create := func(usr user.User, nc class.NewClass) class.Class {
		nc.Date = time.Now().Add(48 * time.Hour).UTC()
		rec := app.do(http.MethodPost, "/api/classes", app.token(t, usr), marshallObj(t, nc))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c class.Class
		unmarshall(t, rec, &c)
		return c
	}

	yoga := create(proUsr, class.NewClass{Title: "Yoga", Location: "Parque Villa-Lobos", Category: "Yoga", Capacity: 1})
	create(proUsr, class.NewClass{Title: "Pilates", Location: "Academia Centro", Category: "Pilates", Level: "intermediate", MaxStudents: 2})
	danca := create(otherProUsr, class.NewClass{Title: "Dança", Location: "Praça da Sé", Category: "Dança", Level: "advanced"})
	stretch := create(otherProUsr, class.NewClass{Title: "Alongamento", Location: "Praça da Sé", Category: "Yoga", MaxStudents: 1})

	app.enroll(t, stuUsr, yoga.ID)    // full by capacity
	app.enroll(t, stuUsr, stretch.ID) // full by max_students
	app.enroll(t, stuUsr, danca.ID)   // unlimited

	tests := []struct {
		name       string
		query      url.Values
		wantTitles []string
	}{
		{name: "no filter", wantTitles: []string{"Yoga", "Pilates", "Dança", "Alongamento"}},
		{name: "location is case insensitive", query: url.Values{"location": {"villa-LOBOS"}}, wantTitles: []string{"Yoga"}},
		{name: "location substring", query: url.Values{"location": {"praça"}}, wantTitles: []string{"Dança", "Alongamento"}},
		{name: "location wildcard is literal", query: url.Values{"location": {"_"}}},
		{name: "category", query: url.Values{"category": {"Yoga"}}, wantTitles: []string{"Yoga", "Alongamento"}},
		{name: "level", query: url.Values{"level": {"Advanced"}}, wantTitles: []string{"Dança"}},
		{name: "professional", query: url.Values{"professional_id": {otherProf.ID}}, wantTitles: []string{"Dança", "Alongamento"}},
		{name: "available skips full classes", query: url.Values{"available": {"true"}}, wantTitles: []string{"Pilates", "Dança"}},
		{name: "available and category", query: url.Values{"available": {"true"}, "category": {"Yoga"}}},
		{name: "available=false lists everything", query: url.Values{"available": {"false"}}, wantTitles: []string{"Yoga", "Pilates", "Dança", "Alongamento"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, "/api/classes?"+tt.query.Encode(), stuToken)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var list []class.Detail
			unmarshall(t, rec, &list)
			titles := make([]string, 0, len(list))
			for _, d := range list {
				titles = append(titles, d.Title)
			}
			assert.ElementsMatch(t, tt.wantTitles, titles)
		})
	}
}
