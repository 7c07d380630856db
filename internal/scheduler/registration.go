package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/utils"
)

// 递补进正式名单的志愿者暂时没有到岗/离岗时间，先用 00:00 占位，
// 需要后续由干事显式更新，这是有意保留的行为
const PlaceholderTime = "00:00"

type RegisterParams struct {
	VolunteerType domain.VolunteerType
	ArrivalTime   string
	LeavingTime   string
	Note          string
}

// Register 为志愿者报名班次
// 正式名单未满时进入正式名单，否则进入候补名单
func (e *Engine) Register(shiftID int64, userID int64, params *RegisterParams) (*domain.Shift, error) {
	// 外层已经校验过时间窗口，这里再校验一次，防止引擎被绕过调用
	if err := utils.ValidateShiftTimeWindow(params.ArrivalTime, params.LeavingTime); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}

	switch shift.Status {
	case domain.ShiftStatusLocked:
		return nil, ErrShiftLocked
	case domain.ShiftStatusOpen, domain.ShiftStatusPublished:
		// 允许报名
	default:
		return nil, ErrRegistrationClosed
	}

	if containsVolunteer(shift, userID) {
		return nil, ErrAlreadyRegistered
	}

	if mainListCount(shift) < shift.RequiredVolunteers {
		shift.RegisteredVolunteers = append(shift.RegisteredVolunteers, domain.ShiftRegistration{
			UserID:        userID,
			VolunteerType: params.VolunteerType,
			ArrivalTime:   params.ArrivalTime,
			LeavingTime:   params.LeavingTime,
			Note:          params.Note,
			Approved:      false,
			Waitlist:      false,
		})
	} else {
		shift.WaitlistVolunteers = append(shift.WaitlistVolunteers, domain.ShiftWaitlistEntry{
			UserID:        userID,
			VolunteerType: params.VolunteerType,
			RegisteredAt:  time.Now(),
		})
	}

	if err := e.saveShift(shift); err != nil {
		return nil, err
	}

	return shift, nil
}

// Unregister 取消报名
// 如果退出的是正式名单中的志愿者且候补名单非空，则递补最早报名的候补志愿者
func (e *Engine) Unregister(shiftID int64, userID int64) (*domain.Shift, error) {
	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}

	mainBefore := len(shift.RegisteredVolunteers)
	waitlistBefore := len(shift.WaitlistVolunteers)

	// 第一步：从正式名单中移除
	registrations := make([]domain.ShiftRegistration, 0, mainBefore)
	for _, reg := range shift.RegisteredVolunteers {
		if reg.UserID != userID {
			registrations = append(registrations, reg)
		}
	}
	mainShrunk := len(registrations) < mainBefore
	shift.RegisteredVolunteers = registrations

	// 第二步：递补，每次取消最多递补一人（因为只空出了一个位置）
	if mainShrunk && len(shift.WaitlistVolunteers) > 0 {
		promoted := popEarliestWaitlisted(shift)
		shift.RegisteredVolunteers = append(shift.RegisteredVolunteers, domain.ShiftRegistration{
			UserID:        promoted.UserID,
			VolunteerType: promoted.VolunteerType,
			ArrivalTime:   PlaceholderTime,
			LeavingTime:   PlaceholderTime,
			Approved:      false,
			Waitlist:      false,
		})
	}

	// 第三步：如果退出者本人在候补名单中，也要移除
	waitlist := make([]domain.ShiftWaitlistEntry, 0, len(shift.WaitlistVolunteers))
	for _, entry := range shift.WaitlistVolunteers {
		if entry.UserID != userID {
			waitlist = append(waitlist, entry)
		}
	}
	shift.WaitlistVolunteers = waitlist

	if len(shift.RegisteredVolunteers) == mainBefore && len(shift.WaitlistVolunteers) == waitlistBefore {
		return nil, ErrNotRegistered
	}

	if err := e.saveShift(shift); err != nil {
		return nil, err
	}

	return shift, nil
}

// Approve 设置正式名单中某个志愿者的审批状态，传 false 即撤销审批
// 不做容量复查，调小所需人数后已审批的志愿者不受影响
func (e *Engine) Approve(shiftID int64, volunteerID int64, approved bool) (*domain.Shift, error) {
	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range shift.RegisteredVolunteers {
		if shift.RegisteredVolunteers[i].UserID == volunteerID {
			shift.RegisteredVolunteers[i].Approved = approved
			found = true
			break
		}
	}
	if !found {
		return nil, ErrVolunteerNotFound
	}

	if err := e.saveShift(shift); err != nil {
		return nil, err
	}

	return shift, nil
}

func containsVolunteer(shift *domain.Shift, userID int64) bool {
	for _, reg := range shift.RegisteredVolunteers {
		if reg.UserID == userID {
			return true
		}
	}
	for _, entry := range shift.WaitlistVolunteers {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}

// mainListCount 统计正式名单中占用名额的报名数
// waitlist 标志在正式名单中恒为 false，这里过滤一下只是防御历史脏数据
func mainListCount(shift *domain.Shift) int32 {
	var count int32
	for _, reg := range shift.RegisteredVolunteers {
		if !reg.Waitlist {
			count++
		}
	}
	return count
}

// popEarliestWaitlisted 取出 registeredAt 最小的候补记录，时间相同时保留先插入的
func popEarliestWaitlisted(shift *domain.Shift) domain.ShiftWaitlistEntry {
	earliestIndex := 0
	for i := 1; i < len(shift.WaitlistVolunteers); i++ {
		if shift.WaitlistVolunteers[i].RegisteredAt.Before(shift.WaitlistVolunteers[earliestIndex].RegisteredAt) {
			earliestIndex = i
		}
	}

	entry := shift.WaitlistVolunteers[earliestIndex]
	shift.WaitlistVolunteers = append(shift.WaitlistVolunteers[:earliestIndex], shift.WaitlistVolunteers[earliestIndex+1:]...)

	return entry
}
