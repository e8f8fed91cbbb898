package sqlxrepos

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestWhere(t *testing.T) {
	w := new(where)
	assert.Equal(t, "", w.String())

	w.add("a = ?", 1)
	w.add("(b ILIKE ? OR c ILIKE ?)", "x", "y")
	w.add("d IS NULL")
	assert.Equal(t, " WHERE a = $1 AND (b ILIKE $2 OR c ILIKE $3) AND d IS NULL", w.String())
	assert.Equal(t, []interface{}{1, "x", "y"}, w.args)
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "", orderBy(nil, "d."))
	got := orderBy([]core.DBOrdering{{Field: "date", Ascending: true}, {Field: "price"}}, "d.")
	assert.Equal(t, " ORDER BY d.date ASC, d.price DESC", got)
}

func TestTrapNoRowsErr(t *testing.T) {
	notFound := errors.New("not found")
	assert.Equal(t, notFound, trapNoRowsErr(sql.ErrNoRows, notFound, "getting"))
	assert.Equal(t, notFound, trapNoRowsErr(errors.Wrap(sql.ErrNoRows, "wrapped"), notFound, "getting"))

	err := trapNoRowsErr(errors.New("boom"), notFound, "getting")
	assert.EqualError(t, err, "getting: boom")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: pqUniqueViolation}))
	assert.True(t, isUniqueViolation(errors.Wrap(&pq.Error{Code: pqUniqueViolation}, "inserting")))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("0e5b8a4e-4a4c-4d55-9a43-1f2a1b6f5c10"))
	assert.False(t, isUUID("42"))
	assert.False(t, isUUID(""))
}
