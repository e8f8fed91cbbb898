// Package inmemdb implements the core repositories in memory, for tests and `database.engine=memory`.
package inmemdb

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/demand"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/forum"
	"github.com/fitsenior/backend/core/message"
	"github.com/fitsenior/backend/core/payment"
	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/student"
	"github.com/fitsenior/backend/core/user"
)

// table keeps rows in insertion order.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) delete(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// all returns the rows matching keep, in insertion order.
func (t *table[T]) all(keep func(T) bool) []T {
	rows := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if row := t.rows[id]; keep == nil || keep(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{rows: make(map[string]T, len(t.rows)), order: append([]string(nil), t.order...)}
	for id, row := range t.rows {
		c.rows[id] = row
	}
	return c
}

type tables struct {
	users         *table[user.User]
	profiles      *table[profile.Profile]
	students      *table[student.Student]
	professionals *table[professional.Professional]
	classes       *table[class.Class]
	enrollments   *table[enrollment.Enrollment]
	attendance    *table[attendance.Record]
	demands       *table[demand.Demand]
	posts         *table[forum.Post]
	replies       *table[forum.Reply]
	classMessages *table[forum.ClassMessage]
	messages      *table[message.Message]
	payments      *table[payment.Payment]
}

func (t tables) clone() tables {
	return tables{
		users:         t.users.clone(),
		profiles:      t.profiles.clone(),
		students:      t.students.clone(),
		professionals: t.professionals.clone(),
		classes:       t.classes.clone(),
		enrollments:   t.enrollments.clone(),
		attendance:    t.attendance.clone(),
		demands:       t.demands.clone(),
		posts:         t.posts.clone(),
		replies:       t.replies.clone(),
		classMessages: t.classMessages.clone(),
		messages:      t.messages.clone(),
		payments:      t.payments.clone(),
	}
}

type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex // held for the whole life of a transaction
	tables
}

func Open() *DB {
	return &DB{tables: tables{
		users:         newTable[user.User](),
		profiles:      newTable[profile.Profile](),
		students:      newTable[student.Student](),
		professionals: newTable[professional.Professional](),
		classes:       newTable[class.Class](),
		enrollments:   newTable[enrollment.Enrollment](),
		attendance:    newTable[attendance.Record](),
		demands:       newTable[demand.Demand](),
		posts:         newTable[forum.Post](),
		replies:       newTable[forum.Reply](),
		classMessages: newTable[forum.ClassMessage](),
		messages:      newTable[message.Message](),
		payments:      newTable[payment.Payment](),
	}}
}

func newID() string {
	return uuid.New().String()
}

type transactor struct {
	db *DB
}

var _ core.Transactor = (*transactor)(nil)

// NewTransactor serialises transactions and restores a snapshot of every table when fn fails.
// Writes made outside of a transaction while one runs are lost on rollback.
func NewTransactor(db *DB) core.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithTx(ctx context.Context, fn func(ctx context.Context, exec core.DBExecutor) error) (err error) {
	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	t.db.mu.RLock()
	snapshot := t.db.tables.clone()
	t.db.mu.RUnlock()

	rollback := func() {
		t.db.mu.Lock()
		t.db.tables = snapshot
		t.db.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, nil); err != nil {
		rollback()
	}
	return err
}
