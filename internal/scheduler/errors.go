package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrShiftNotFound          = errors.New("班次不存在")
	ErrVolunteerNotFound      = errors.New("该志愿者不在正式名单中")
	ErrAlreadyRegistered      = errors.New("已经报名或在候补名单中")
	ErrShiftLocked            = errors.New("班次已锁定，无法报名")
	ErrRegistrationClosed     = errors.New("班次当前不可报名")
	ErrNotRegistered          = errors.New("未报名且不在候补名单中")
	ErrConcurrentModification = errors.New("操作冲突，请重试")
)

// ValidationError: 输入不合法导致的失败，调用方应将其视为客户端错误
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
