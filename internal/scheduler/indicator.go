package scheduler

import (
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
)

/**
 * StatusIndicator 计算班次的完成度指示
 * 颜色规则（按顺序判断）：
 * 		1. 正式名单为空 -> gray
 * 		2. 已审批人数达到所需人数且候补名单非空 -> blue
 * 		3. 已审批人数达到所需人数 -> green
 * 		4. 其余情况 -> orange
 * pendingIcon 表示正式名单中还有未审批的报名
 */
func (e *Engine) StatusIndicator(shiftID int64) (*domain.ShiftStatusIndicator, error) {
	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}

	total := int32(len(shift.RegisteredVolunteers))
	waitlisted := int32(len(shift.WaitlistVolunteers))

	var approved int32
	pending := false
	for _, reg := range shift.RegisteredVolunteers {
		if reg.Approved {
			approved++
		} else {
			pending = true
		}
	}

	var color domain.IndicatorColor
	switch {
	case total == 0:
		color = domain.IndicatorGray
	case approved >= shift.RequiredVolunteers && waitlisted > 0:
		color = domain.IndicatorBlue
	case approved >= shift.RequiredVolunteers:
		color = domain.IndicatorGreen
	default:
		color = domain.IndicatorOrange
	}

	return &domain.ShiftStatusIndicator{
		Color:       color,
		PendingIcon: pending,
		Counts: domain.ShiftStatusCounts{
			Approved:   approved,
			Total:      total,
			Required:   shift.RequiredVolunteers,
			Waitlisted: waitlisted,
		},
		Status: shift.Status,
	}, nil
}
