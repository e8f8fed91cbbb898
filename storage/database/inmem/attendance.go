package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertAttendance(_ context.Context, r attendance.Record, _ ...core.DBExecutor) (attendance.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.attendance.all(nil) {
		if existing.EnrollmentID == r.EnrollmentID && existing.Date.Equal(r.Date) {
			existing.Present = r.Present
			repo.db.attendance.put(existing.ID, existing)
			return existing, nil
		}
	}
	r.ID = newID()
	repo.db.attendance.put(r.ID, r)
	return r, nil
}

func (repo *attendanceRepository) ListClassAttendance(_ context.Context, classID string, date *time.Time, _ ...core.DBExecutor) ([]attendance.ClassRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var records []attendance.ClassRecord
	for _, r := range repo.db.attendance.all(nil) {
		if date != nil && !r.Date.Equal(*date) {
			continue
		}
		e, ok := repo.db.enrollments.get(r.EnrollmentID)
		if !ok || e.ClassID != classID {
			continue
		}
		name, _ := repo.db.memberName(e)
		records = append(records, attendance.ClassRecord{Record: r, UserID: e.UserID, StudentName: name})
	}
	sort.SliceStable(records, func(i, j int) bool {
		if cmp := compareTimes(records[i].Date, records[j].Date); cmp != 0 {
			return cmp < 0
		}
		return strings.Compare(records[i].StudentName, records[j].StudentName) < 0
	})
	if records == nil {
		records = []attendance.ClassRecord{}
	}
	return records, nil
}

func (repo *attendanceRepository) ListEnrollmentAttendance(_ context.Context, enrollmentID string, _ ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := repo.db.attendance.all(func(r attendance.Record) bool { return r.EnrollmentID == enrollmentID })
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}
