package scheduler_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/scheduler"
)

// fakeShiftStore 是 ShiftStore 的内存实现，行为与数据库实现保持一致：
// 查不到记录和保存时版本冲突都返回 sql.ErrNoRows
type fakeShiftStore struct {
	shifts map[int64]*domain.Shift
	nextID int64

	// 设置后下一次 SaveShift 直接返回版本冲突
	conflictOnSave bool
}

func newFakeShiftStore() *fakeShiftStore {
	return &fakeShiftStore{
		shifts: make(map[int64]*domain.Shift),
		nextID: 1,
	}
}

func copyShift(shift *domain.Shift) *domain.Shift {
	clone := *shift
	clone.RegisteredVolunteers = append([]domain.ShiftRegistration(nil), shift.RegisteredVolunteers...)
	clone.WaitlistVolunteers = append([]domain.ShiftWaitlistEntry(nil), shift.WaitlistVolunteers...)
	return &clone
}

func (s *fakeShiftStore) GetShiftByID(id int64) (*domain.Shift, error) {
	shift, exists := s.shifts[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return copyShift(shift), nil
}

func (s *fakeShiftStore) GetShifts(filter *domain.ShiftFilter) ([]*domain.Shift, error) {
	shifts := make([]*domain.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		if filter.Unit != nil && shift.Unit != *filter.Unit {
			continue
		}
		if filter.ShiftType != nil && shift.ShiftType != *filter.ShiftType {
			continue
		}
		if filter.Status != nil && shift.Status != *filter.Status {
			continue
		}
		if filter.From != nil && shift.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && shift.Date.After(*filter.To) {
			continue
		}
		shifts = append(shifts, copyShift(shift))
	}
	return shifts, nil
}

func (s *fakeShiftStore) CreateShift(shift *domain.Shift) error {
	shift.ID = s.nextID
	s.nextID++
	shift.Version = 1
	shift.CreatedAt = time.Now()
	shift.UpdatedAt = shift.CreatedAt
	s.shifts[shift.ID] = copyShift(shift)
	return nil
}

func (s *fakeShiftStore) SaveShift(shift *domain.Shift) error {
	if s.conflictOnSave {
		return sql.ErrNoRows
	}
	stored, exists := s.shifts[shift.ID]
	if !exists || stored.Version != shift.Version {
		return sql.ErrNoRows
	}
	shift.Version++
	shift.UpdatedAt = time.Now()
	s.shifts[shift.ID] = copyShift(shift)
	return nil
}

func (s *fakeShiftStore) DeleteShift(id int64) error {
	delete(s.shifts, id)
	return nil
}

func newTestEngine(t *testing.T) (*scheduler.Engine, *fakeShiftStore) {
	t.Helper()
	store := newFakeShiftStore()
	return scheduler.NewEngine(store), store
}

func newTestShift(t *testing.T, engine *scheduler.Engine, required int32, status domain.ShiftStatus) *domain.Shift {
	t.Helper()
	shift := &domain.Shift{
		Date:               time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		ShiftType:          domain.ShiftTypeMorning,
		Unit:               domain.UnitEastCampus,
		RequiredVolunteers: required,
		Status:             status,
	}
	require.NoError(t, engine.Create(shift))
	return shift
}

func TestCreate(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 3, "")

	assert.NotZero(t, shift.ID)
	assert.Equal(t, domain.ShiftStatusOpen, shift.Status, "不指定状态时默认为 open")
	assert.NotNil(t, shift.RegisteredVolunteers)
	assert.Empty(t, shift.RegisteredVolunteers)
	assert.NotNil(t, shift.WaitlistVolunteers)
	assert.Empty(t, shift.WaitlistVolunteers)
}

func TestCreateValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		shift *domain.Shift
	}{
		{
			name: "缺少班次类型",
			shift: &domain.Shift{
				Date: date, Unit: domain.UnitEastCampus, RequiredVolunteers: 3,
			},
		},
		{
			name: "缺少值班单位",
			shift: &domain.Shift{
				Date: date, ShiftType: domain.ShiftTypeMorning, RequiredVolunteers: 3,
			},
		},
		{
			name: "缺少日期",
			shift: &domain.Shift{
				ShiftType: domain.ShiftTypeMorning, Unit: domain.UnitEastCampus, RequiredVolunteers: 3,
			},
		},
		{
			name: "所需人数为负",
			shift: &domain.Shift{
				Date: date, ShiftType: domain.ShiftTypeMorning, Unit: domain.UnitEastCampus, RequiredVolunteers: -1,
			},
		},
		{
			name: "所需人数超过上限",
			shift: &domain.Shift{
				Date: date, ShiftType: domain.ShiftTypeMorning, Unit: domain.UnitEastCampus, RequiredVolunteers: 16,
			},
		},
		{
			name: "状态无效",
			shift: &domain.Shift{
				Date: date, ShiftType: domain.ShiftTypeMorning, Unit: domain.UnitEastCampus, RequiredVolunteers: 3, Status: "archived",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.Create(tc.shift)
			vErr := &scheduler.ValidationError{}
			require.ErrorAs(t, err, &vErr)
		})
	}
}

func TestCreateAllowsMaxRequiredVolunteers(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, domain.MaxRequiredVolunteers, domain.ShiftStatusOpen)
	assert.Equal(t, domain.MaxRequiredVolunteers, shift.RequiredVolunteers)
}

func TestGetOne(t *testing.T) {
	engine, _ := newTestEngine(t)

	created := newTestShift(t, engine, 3, domain.ShiftStatusOpen)

	shift, err := engine.GetOne(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, shift.ID)

	_, err = engine.GetOne(999)
	assert.ErrorIs(t, err, scheduler.ErrShiftNotFound)
}

func TestUpdate(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 3, domain.ShiftStatusOpen)

	newRequired := int32(5)
	newStatus := domain.ShiftStatusPublished
	newNote := "需要一名组长带班"
	updated, err := engine.Update(shift.ID, &domain.ShiftPatch{
		RequiredVolunteers: &newRequired,
		Status:             &newStatus,
		ShiftNote:          &newNote,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(5), updated.RequiredVolunteers)
	assert.Equal(t, domain.ShiftStatusPublished, updated.Status)
	assert.Equal(t, "需要一名组长带班", updated.ShiftNote)
	// 未出现在 patch 中的字段保持不变
	assert.Equal(t, domain.ShiftTypeMorning, updated.ShiftType)
	assert.Equal(t, domain.UnitEastCampus, updated.Unit)
}

func TestUpdateValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 3, domain.ShiftStatusOpen)

	tooMany := int32(16)
	_, err := engine.Update(shift.ID, &domain.ShiftPatch{RequiredVolunteers: &tooMany})
	vErr := &scheduler.ValidationError{}
	require.ErrorAs(t, err, &vErr)

	badStatus := domain.ShiftStatus("archived")
	_, err = engine.Update(shift.ID, &domain.ShiftPatch{Status: &badStatus})
	require.ErrorAs(t, err, &vErr)

	required := int32(5)
	_, err = engine.Update(999, &domain.ShiftPatch{RequiredVolunteers: &required})
	assert.ErrorIs(t, err, scheduler.ErrShiftNotFound)
}

func TestUpdateConcurrentModification(t *testing.T) {
	engine, store := newTestEngine(t)

	shift := newTestShift(t, engine, 3, domain.ShiftStatusOpen)

	store.conflictOnSave = true

	required := int32(5)
	_, err := engine.Update(shift.ID, &domain.ShiftPatch{RequiredVolunteers: &required})
	assert.ErrorIs(t, err, scheduler.ErrConcurrentModification)
}

func TestDelete(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 3, domain.ShiftStatusOpen)

	require.NoError(t, engine.Delete(shift.ID))

	_, err := engine.GetOne(shift.ID)
	assert.ErrorIs(t, err, scheduler.ErrShiftNotFound)

	assert.ErrorIs(t, engine.Delete(shift.ID), scheduler.ErrShiftNotFound)
}

func TestListByRange(t *testing.T) {
	engine, _ := newTestEngine(t)

	newTestShift(t, engine, 3, domain.ShiftStatusOpen)

	south := &domain.Shift{
		Date:               time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		ShiftType:          domain.ShiftTypeEvening,
		Unit:               domain.UnitSouthCampus,
		RequiredVolunteers: 2,
		Status:             domain.ShiftStatusPublished,
	}
	require.NoError(t, engine.Create(south))

	all, err := engine.ListByRange(&domain.ShiftFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unit := domain.UnitSouthCampus
	filtered, err := engine.ListByRange(&domain.ShiftFilter{Unit: &unit})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, south.ID, filtered[0].ID)

	// from/to 都含当天
	from := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	filtered, err = engine.ListByRange(&domain.ShiftFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, south.ID, filtered[0].ID)
}
