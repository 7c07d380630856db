package domain

import (
	"time"
)

type ShiftStatus string

const (
	ShiftStatusOpen      ShiftStatus = "open"
	ShiftStatusPublished ShiftStatus = "published"
	ShiftStatusLocked    ShiftStatus = "locked"
)

type ShiftUnit string

const (
	UnitEastCampus  ShiftUnit = "东校园"
	UnitSouthCampus ShiftUnit = "南校园"
	UnitNorthCampus ShiftUnit = "北校园"
	UnitZhuhai      ShiftUnit = "珠海校区"
)

type ShiftType string

const (
	ShiftTypeMorning ShiftType = "早班"
	ShiftTypeNoon    ShiftType = "午班"
	ShiftTypeEvening ShiftType = "晚班"
)

type VolunteerType string

const (
	VolunteerTypeNormal  VolunteerType = "普通志愿者"
	VolunteerTypeTrainee VolunteerType = "见习志愿者"
	VolunteerTypeLeader  VolunteerType = "组长"
)

// 单个班次最多需要的志愿者人数
const MaxRequiredVolunteers int32 = 15

// ShiftRegistration: 正式名单中的一条报名记录
type ShiftRegistration struct {
	UserID        int64         `json:"userID"`
	VolunteerType VolunteerType `json:"volunteerType"`
	ArrivalTime   string        `json:"arrivalTime"` // HH:MM
	LeavingTime   string        `json:"leavingTime"` // HH:MM
	Note          string        `json:"note"`
	Approved      bool          `json:"approved"`
	Waitlist      bool          `json:"waitlist"` // 正式名单中的记录恒为 false，历史遗留字段
}

// ShiftWaitlistEntry: 候补名单中的一条记录，registeredAt 是唯一的排序依据
type ShiftWaitlistEntry struct {
	UserID        int64         `json:"userID"`
	VolunteerType VolunteerType `json:"volunteerType"`
	RegisteredAt  time.Time     `json:"registeredAt"`
}

type Shift struct {
	ID                   int64                `json:"id"`
	Date                 time.Time            `json:"date"`
	ShiftType            ShiftType            `json:"shiftType"`
	Unit                 ShiftUnit            `json:"unit"`
	RequiredVolunteers   int32                `json:"requiredVolunteers"`
	Status               ShiftStatus          `json:"status"`
	RegisteredVolunteers []ShiftRegistration  `json:"registeredVolunteers"`
	WaitlistVolunteers   []ShiftWaitlistEntry `json:"waitlistVolunteers"`
	ShiftNote            string               `json:"shiftNote"` // 仅干事可见
	SharedNote           string               `json:"sharedNote"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
	Version              int32                `json:"-"`
}

// ShiftPatch: 部分更新时允许修改的字段，nil 表示不修改
type ShiftPatch struct {
	Date               *time.Time
	ShiftType          *ShiftType
	Unit               *ShiftUnit
	RequiredVolunteers *int32
	Status             *ShiftStatus
	ShiftNote          *string
	SharedNote         *string
}

// ApplyPatch 将 patch 中非 nil 的字段合并到班次上
func (s *Shift) ApplyPatch(patch *ShiftPatch) {
	if patch.Date != nil {
		s.Date = *patch.Date
	}
	if patch.ShiftType != nil {
		s.ShiftType = *patch.ShiftType
	}
	if patch.Unit != nil {
		s.Unit = *patch.Unit
	}
	if patch.RequiredVolunteers != nil {
		s.RequiredVolunteers = *patch.RequiredVolunteers
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.ShiftNote != nil {
		s.ShiftNote = *patch.ShiftNote
	}
	if patch.SharedNote != nil {
		s.SharedNote = *patch.SharedNote
	}
}

// ShiftFilter: 班次列表的筛选条件，所有条件同时生效（AND）
type ShiftFilter struct {
	Unit      *ShiftUnit
	ShiftType *ShiftType
	Status    *ShiftStatus
	From      *time.Time // 含当天
	To        *time.Time // 含当天
}

type IndicatorColor string

const (
	IndicatorGray   IndicatorColor = "gray"
	IndicatorBlue   IndicatorColor = "blue"
	IndicatorGreen  IndicatorColor = "green"
	IndicatorOrange IndicatorColor = "orange"
)

type ShiftStatusCounts struct {
	Approved   int32 `json:"approved"`
	Total      int32 `json:"total"`
	Required   int32 `json:"required"`
	Waitlisted int32 `json:"waitlisted"`
}

// ShiftStatusIndicator: 给干事看的班次完成度汇总
type ShiftStatusIndicator struct {
	Color       IndicatorColor    `json:"color"`
	PendingIcon bool              `json:"pendingIcon"`
	Counts      ShiftStatusCounts `json:"counts"`
	Status      ShiftStatus       `json:"status"`
}
