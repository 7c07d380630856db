package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/scheduler"
)

const dateLayout = "2006-01-02"

// engineError 把引擎的各类失败映射到固定的状态码
func (h *Handler) engineError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *scheduler.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.errorResponse(w, r, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, scheduler.ErrShiftNotFound), errors.Is(err, scheduler.ErrVolunteerNotFound):
		h.errorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, scheduler.ErrNotRegistered):
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduler.ErrAlreadyRegistered),
		errors.Is(err, scheduler.ErrShiftLocked),
		errors.Is(err, scheduler.ErrRegistrationClosed),
		errors.Is(err, scheduler.ErrConcurrentModification):
		h.errorResponse(w, r, http.StatusConflict, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) callerIsOfficer(r *http.Request) bool {
	role := domain.Role(r.Context().Value(RoleCtxKey).(string))
	return role == domain.RoleOfficer || role == domain.RoleBlackCore
}

// hideOfficerNote 对非干事隐藏班次的内部备注
func (h *Handler) hideOfficerNote(r *http.Request, shifts ...*domain.Shift) {
	if h.callerIsOfficer(r) {
		return
	}
	for _, shift := range shifts {
		shift.ShiftNote = ""
	}
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date               string `json:"date" validate:"required"`
		ShiftType          string `json:"shiftType" validate:"required,oneof=早班 午班 晚班"`
		Unit               string `json:"unit" validate:"required,oneof=东校园 南校园 北校园 珠海校区"`
		RequiredVolunteers int32  `json:"requiredVolunteers" validate:"gte=0,lte=15"`
		Status             string `json:"status" validate:"omitempty,oneof=open published locked"`
		ShiftNote          string `json:"shiftNote"`
		SharedNote         string `json:"sharedNote"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "班次日期格式错误，应为 YYYY-MM-DD")
		return
	}

	shift := &domain.Shift{
		Date:               date,
		ShiftType:          domain.ShiftType(req.ShiftType),
		Unit:               domain.ShiftUnit(req.Unit),
		RequiredVolunteers: req.RequiredVolunteers,
		Status:             domain.ShiftStatus(req.Status),
		ShiftNote:          req.ShiftNote,
		SharedNote:         req.SharedNote,
	}

	if err := h.engine.Create(shift); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.createdResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	filter := &domain.ShiftFilter{}
	query := r.URL.Query()

	if v := query.Get("unit"); v != "" {
		unit := domain.ShiftUnit(v)
		filter.Unit = &unit
	}
	if v := query.Get("shiftType"); v != "" {
		shiftType := domain.ShiftType(v)
		filter.ShiftType = &shiftType
	}
	if v := query.Get("status"); v != "" {
		status := domain.ShiftStatus(v)
		filter.Status = &status
	}
	if v := query.Get("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "起始日期格式错误，应为 YYYY-MM-DD")
			return
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "结束日期格式错误，应为 YYYY-MM-DD")
			return
		}
		filter.To = &to
	}

	shifts, err := h.engine.ListByRange(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.hideOfficerNote(r, shifts...)
	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	shift, err := h.engine.GetOne(shiftID)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.hideOfficerNote(r, shift)
	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	var req struct {
		Date               *string `json:"date"`
		ShiftType          *string `json:"shiftType" validate:"omitempty,oneof=早班 午班 晚班"`
		Unit               *string `json:"unit" validate:"omitempty,oneof=东校园 南校园 北校园 珠海校区"`
		RequiredVolunteers *int32  `json:"requiredVolunteers" validate:"omitempty,gte=0,lte=15"`
		Status             *string `json:"status" validate:"omitempty,oneof=open published locked"`
		ShiftNote          *string `json:"shiftNote"`
		SharedNote         *string `json:"sharedNote"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	patch := &domain.ShiftPatch{
		RequiredVolunteers: req.RequiredVolunteers,
		ShiftNote:          req.ShiftNote,
		SharedNote:         req.SharedNote,
	}

	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "班次日期格式错误，应为 YYYY-MM-DD")
			return
		}
		patch.Date = &date
	}
	if req.ShiftType != nil {
		shiftType := domain.ShiftType(*req.ShiftType)
		patch.ShiftType = &shiftType
	}
	if req.Unit != nil {
		unit := domain.ShiftUnit(*req.Unit)
		patch.Unit = &unit
	}
	if req.Status != nil {
		status := domain.ShiftStatus(*req.Status)
		patch.Status = &status
	}

	shift, err := h.engine.Update(shiftID, patch)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新班次成功", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	if err := h.engine.Delete(shiftID); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班次成功", nil)
}

func (h *Handler) RegisterForShift(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		VolunteerType string `json:"volunteerType" validate:"required,oneof=普通志愿者 见习志愿者 组长"`
		ArrivalTime   string `json:"arrivalTime" validate:"required"`
		LeavingTime   string `json:"leavingTime" validate:"required"`
		Note          string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.engine.Register(shiftID, myInfo.ID, &scheduler.RegisterParams{
		VolunteerType: domain.VolunteerType(req.VolunteerType),
		ArrivalTime:   req.ArrivalTime,
		LeavingTime:   req.LeavingTime,
		Note:          req.Note,
	})
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.hideOfficerNote(r, shift)
	h.successResponse(w, r, "报名成功", shift)
}

func (h *Handler) UnregisterFromShift(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	shift, err := h.engine.Unregister(shiftID, myInfo.ID)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.hideOfficerNote(r, shift)
	h.successResponse(w, r, "取消报名成功", shift)
}

func (h *Handler) ApproveVolunteer(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	volunteerIDParam := chi.URLParam(r, "volunteerId")
	volunteerID, err := strconv.ParseInt(volunteerIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "志愿者ID无效")
		return
	}

	approveParam := r.URL.Query().Get("approve")
	if approveParam == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "缺少 approve 参数")
		return
	}
	approved, err := strconv.ParseBool(approveParam)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "approve 参数必须为 true 或 false")
		return
	}

	shift, err := h.engine.Approve(shiftID, volunteerID, approved)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	msg := "审批成功"
	if !approved {
		msg = "已撤销审批"
	}
	h.successResponse(w, r, msg, shift)
}

func (h *Handler) GetShiftStatusIndicator(w http.ResponseWriter, r *http.Request) {
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	indicator, err := h.engine.StatusIndicator(shiftID)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次状态成功", indicator)
}
