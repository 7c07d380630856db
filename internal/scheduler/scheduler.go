package scheduler

import (
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
)

// ShiftStore 是排班引擎对持久层的唯一依赖
// 实现方约定：查不到记录或保存时版本冲突都返回 sql.ErrNoRows
type ShiftStore interface {
	GetShiftByID(id int64) (*domain.Shift, error)
	GetShifts(filter *domain.ShiftFilter) ([]*domain.Shift, error)
	CreateShift(shift *domain.Shift) error
	SaveShift(shift *domain.Shift) error
	DeleteShift(id int64) error
}

// Engine 实现班次报名/候补/递补的状态机以及干事的审批和汇总逻辑
// 引擎本身不关心调用者的角色，角色检查由外层的路由中间件完成
type Engine struct {
	store ShiftStore
}

func NewEngine(store ShiftStore) *Engine {
	return &Engine{
		store: store,
	}
}

// ListByRange 按筛选条件列出班次，结果按日期升序排列
func (e *Engine) ListByRange(filter *domain.ShiftFilter) ([]*domain.Shift, error) {
	return e.store.GetShifts(filter)
}

func (e *Engine) GetOne(id int64) (*domain.Shift, error) {
	return e.loadShift(id)
}

func (e *Engine) Create(shift *domain.Shift) error {
	if shift.ShiftType == "" || shift.Unit == "" {
		return NewValidationError("班次类型和值班单位不能为空")
	}
	if shift.Date.IsZero() {
		return NewValidationError("班次日期不能为空")
	}
	if shift.RequiredVolunteers < 0 || shift.RequiredVolunteers > domain.MaxRequiredVolunteers {
		return NewValidationError("所需志愿者人数必须在 0 到 %d 之间", domain.MaxRequiredVolunteers)
	}

	if shift.Status == "" {
		shift.Status = domain.ShiftStatusOpen
	}
	if !isValidStatus(shift.Status) {
		return NewValidationError("无效的班次状态: %s", shift.Status)
	}

	shift.RegisteredVolunteers = make([]domain.ShiftRegistration, 0)
	shift.WaitlistVolunteers = make([]domain.ShiftWaitlistEntry, 0)

	return e.store.CreateShift(shift)
}

// Update 将 patch 合并到已有班次上
// 注意这里不做跨字段的回溯校验，例如调小所需人数不会把已有的报名挤出正式名单
func (e *Engine) Update(id int64, patch *domain.ShiftPatch) (*domain.Shift, error) {
	if patch.RequiredVolunteers != nil && (*patch.RequiredVolunteers < 0 || *patch.RequiredVolunteers > domain.MaxRequiredVolunteers) {
		return nil, NewValidationError("所需志愿者人数必须在 0 到 %d 之间", domain.MaxRequiredVolunteers)
	}
	if patch.Status != nil && !isValidStatus(*patch.Status) {
		return nil, NewValidationError("无效的班次状态: %s", *patch.Status)
	}

	shift, err := e.loadShift(id)
	if err != nil {
		return nil, err
	}

	shift.ApplyPatch(patch)

	if err := e.saveShift(shift); err != nil {
		return nil, err
	}

	return shift, nil
}

func (e *Engine) Delete(id int64) error {
	if _, err := e.loadShift(id); err != nil {
		return err
	}

	return e.store.DeleteShift(id)
}

func (e *Engine) loadShift(id int64) (*domain.Shift, error) {
	shift, err := e.store.GetShiftByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrShiftNotFound
		default:
			return nil, err
		}
	}

	return shift, nil
}

func (e *Engine) saveShift(shift *domain.Shift) error {
	if err := e.store.SaveShift(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 版本号对不上，说明班次在读取之后被其他请求改过了
			return ErrConcurrentModification
		default:
			return err
		}
	}

	return nil
}

func isValidStatus(status domain.ShiftStatus) bool {
	switch status {
	case domain.ShiftStatusOpen, domain.ShiftStatusPublished, domain.ShiftStatusLocked:
		return true
	default:
		return false
	}
}
