package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/scheduler"
)

func registerParams() *scheduler.RegisterParams {
	return &scheduler.RegisterParams{
		VolunteerType: domain.VolunteerTypeNormal,
		ArrivalTime:   "08:00",
		LeavingTime:   "12:00",
	}
}

func TestRegister(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 2, domain.ShiftStatusOpen)

	updated, err := engine.Register(shift.ID, 1, &scheduler.RegisterParams{
		VolunteerType: domain.VolunteerTypeLeader,
		ArrivalTime:   "08:00",
		LeavingTime:   "12:00",
		Note:          "第一次带班",
	})
	require.NoError(t, err)

	require.Len(t, updated.RegisteredVolunteers, 1)
	reg := updated.RegisteredVolunteers[0]
	assert.Equal(t, int64(1), reg.UserID)
	assert.Equal(t, domain.VolunteerTypeLeader, reg.VolunteerType)
	assert.Equal(t, "08:00", reg.ArrivalTime)
	assert.Equal(t, "12:00", reg.LeavingTime)
	assert.Equal(t, "第一次带班", reg.Note)
	assert.False(t, reg.Approved, "新报名必须等待干事审批")
	assert.False(t, reg.Waitlist)
	assert.Empty(t, updated.WaitlistVolunteers)
}

func TestRegisterOverflowToWaitlist(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 2, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 2, registerParams())
	require.NoError(t, err)

	// 第三个人报名时正式名单已满，进入候补名单
	updated, err := engine.Register(shift.ID, 3, registerParams())
	require.NoError(t, err)

	assert.Len(t, updated.RegisteredVolunteers, 2)
	require.Len(t, updated.WaitlistVolunteers, 1)
	assert.Equal(t, int64(3), updated.WaitlistVolunteers[0].UserID)
	assert.False(t, updated.WaitlistVolunteers[0].RegisteredAt.IsZero())
}

func TestRegisterZeroCapacity(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 0, domain.ShiftStatusOpen)

	updated, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)

	assert.Empty(t, updated.RegisteredVolunteers)
	assert.Len(t, updated.WaitlistVolunteers, 1)
}

func TestRegisterDuplicate(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 1, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 2, registerParams())
	require.NoError(t, err)

	// 正式名单和候补名单中的用户都不允许重复报名
	_, err = engine.Register(shift.ID, 1, registerParams())
	assert.ErrorIs(t, err, scheduler.ErrAlreadyRegistered)
	_, err = engine.Register(shift.ID, 2, registerParams())
	assert.ErrorIs(t, err, scheduler.ErrAlreadyRegistered)
}

func TestRegisterStatusGate(t *testing.T) {
	engine, _ := newTestEngine(t)

	locked := newTestShift(t, engine, 2, domain.ShiftStatusLocked)
	_, err := engine.Register(locked.ID, 1, registerParams())
	assert.ErrorIs(t, err, scheduler.ErrShiftLocked)

	published := newTestShift(t, engine, 2, domain.ShiftStatusPublished)
	_, err = engine.Register(published.ID, 1, registerParams())
	assert.NoError(t, err, "published 状态的班次允许报名")
}

func TestRegisterInvalidTimeWindow(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 2, domain.ShiftStatusOpen)

	vErr := &scheduler.ValidationError{}

	_, err := engine.Register(shift.ID, 1, &scheduler.RegisterParams{
		VolunteerType: domain.VolunteerTypeNormal,
		ArrivalTime:   "8:00",
		LeavingTime:   "12:00",
	})
	require.ErrorAs(t, err, &vErr, "时间必须补零为 HH:MM")

	_, err = engine.Register(shift.ID, 1, &scheduler.RegisterParams{
		VolunteerType: domain.VolunteerTypeNormal,
		ArrivalTime:   "12:00",
		LeavingTime:   "08:00",
	})
	require.ErrorAs(t, err, &vErr, "离岗时间必须晚于到岗时间")
}

func TestRegisterShiftNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Register(999, 1, registerParams())
	assert.ErrorIs(t, err, scheduler.ErrShiftNotFound)
}

func TestUnregisterFromMainList(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 2, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 2, registerParams())
	require.NoError(t, err)

	updated, err := engine.Unregister(shift.ID, 1)
	require.NoError(t, err)

	require.Len(t, updated.RegisteredVolunteers, 1)
	assert.Equal(t, int64(2), updated.RegisteredVolunteers[0].UserID)
	assert.Empty(t, updated.WaitlistVolunteers)
}

func TestUnregisterPromotesEarliestWaitlisted(t *testing.T) {
	engine, store := newTestEngine(t)

	shift := newTestShift(t, engine, 1, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 2, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 3, registerParams())
	require.NoError(t, err)

	// 把用户 3 的候补时间改到用户 2 之前，验证递补的是最早报名的人
	stored := store.shifts[shift.ID]
	require.Len(t, stored.WaitlistVolunteers, 2)
	for i := range stored.WaitlistVolunteers {
		if stored.WaitlistVolunteers[i].UserID == 3 {
			stored.WaitlistVolunteers[i].RegisteredAt = time.Now().Add(-time.Hour)
		}
	}

	updated, err := engine.Unregister(shift.ID, 1)
	require.NoError(t, err)

	require.Len(t, updated.RegisteredVolunteers, 1)
	promoted := updated.RegisteredVolunteers[0]
	assert.Equal(t, int64(3), promoted.UserID)
	assert.Equal(t, scheduler.PlaceholderTime, promoted.ArrivalTime, "递补的志愿者用占位时间，等干事更新")
	assert.Equal(t, scheduler.PlaceholderTime, promoted.LeavingTime)
	assert.False(t, promoted.Approved, "递补后仍需要重新审批")

	require.Len(t, updated.WaitlistVolunteers, 1)
	assert.Equal(t, int64(2), updated.WaitlistVolunteers[0].UserID)
}

func TestUnregisterPromotesAtMostOne(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 1, domain.ShiftStatusOpen)

	for userID := int64(1); userID <= 4; userID++ {
		_, err := engine.Register(shift.ID, userID, registerParams())
		require.NoError(t, err)
	}

	// 每次取消只空出一个名额，因此最多递补一人
	updated, err := engine.Unregister(shift.ID, 1)
	require.NoError(t, err)

	assert.Len(t, updated.RegisteredVolunteers, 1)
	assert.Len(t, updated.WaitlistVolunteers, 2)
}

func TestUnregisterFromWaitlist(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 1, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 2, registerParams())
	require.NoError(t, err)

	// 候补志愿者退出不触发递补
	updated, err := engine.Unregister(shift.ID, 2)
	require.NoError(t, err)

	require.Len(t, updated.RegisteredVolunteers, 1)
	assert.Equal(t, int64(1), updated.RegisteredVolunteers[0].UserID)
	assert.Empty(t, updated.WaitlistVolunteers)
}

func TestUnregisterNotRegistered(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 2, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)

	_, err = engine.Unregister(shift.ID, 999)
	assert.ErrorIs(t, err, scheduler.ErrNotRegistered)

	_, err = engine.Unregister(999, 1)
	assert.ErrorIs(t, err, scheduler.ErrShiftNotFound)
}

func TestApprove(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 2, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)

	updated, err := engine.Approve(shift.ID, 1, true)
	require.NoError(t, err)
	assert.True(t, updated.RegisteredVolunteers[0].Approved)

	// 撤销审批
	updated, err = engine.Approve(shift.ID, 1, false)
	require.NoError(t, err)
	assert.False(t, updated.RegisteredVolunteers[0].Approved)
}

func TestApproveVolunteerNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)

	shift := newTestShift(t, engine, 1, domain.ShiftStatusOpen)

	_, err := engine.Register(shift.ID, 1, registerParams())
	require.NoError(t, err)
	_, err = engine.Register(shift.ID, 2, registerParams())
	require.NoError(t, err)

	_, err = engine.Approve(shift.ID, 999, true)
	assert.ErrorIs(t, err, scheduler.ErrVolunteerNotFound)

	// 候补名单中的志愿者不可审批
	_, err = engine.Approve(shift.ID, 2, true)
	assert.ErrorIs(t, err, scheduler.ErrVolunteerNotFound)
}
