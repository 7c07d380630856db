package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
)

func (r *Repository) CreateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shifts (date, shift_type, unit, required_volunteers, status, shift_note, shared_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at, version
	`

	args := []any{shift.Date, shift.ShiftType, shift.Unit, shift.RequiredVolunteers, shift.Status, shift.ShiftNote, shift.SharedNote}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT date, shift_type, unit, required_volunteers, status, shift_note, shared_note, created_at, updated_at, version
		FROM shifts WHERE id = $1
	`

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{&shift.Date, &shift.ShiftType, &shift.Unit, &shift.RequiredVolunteers, &shift.Status, &shift.ShiftNote, &shift.SharedNote, &shift.CreatedAt, &shift.UpdatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	// 正式名单按插入顺序返回（自增主键即插入顺序）
	query = `
		SELECT user_id, volunteer_type, arrival_time, leaving_time, note, approved, waitlist
		FROM shift_registrations WHERE shift_id = $1
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shift.RegisteredVolunteers = make([]domain.ShiftRegistration, 0)
	for rows.Next() {
		reg := domain.ShiftRegistration{}
		dst := []any{&reg.UserID, &reg.VolunteerType, &reg.ArrivalTime, &reg.LeavingTime, &reg.Note, &reg.Approved, &reg.Waitlist}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shift.RegisteredVolunteers = append(shift.RegisteredVolunteers, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 候补名单的顺序就是递补顺序
	query = `
		SELECT user_id, volunteer_type, registered_at
		FROM shift_waitlist WHERE shift_id = $1
		ORDER BY registered_at, id
	`

	rows, err = r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shift.WaitlistVolunteers = make([]domain.ShiftWaitlistEntry, 0)
	for rows.Next() {
		entry := domain.ShiftWaitlistEntry{}
		if err := rows.Scan(&entry.UserID, &entry.VolunteerType, &entry.RegisteredAt); err != nil {
			return nil, err
		}
		shift.WaitlistVolunteers = append(shift.WaitlistVolunteers, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shift, nil
}

// buildShiftFilter 把筛选条件拼成 WHERE 子句，所有条件用 AND 连接
func buildShiftFilter(filter *domain.ShiftFilter) (string, []any) {
	conditions := []string{}
	args := []any{}

	if filter.Unit != nil {
		args = append(args, *filter.Unit)
		conditions = append(conditions, fmt.Sprintf("s.unit = $%d", len(args)))
	}
	if filter.ShiftType != nil {
		args = append(args, *filter.ShiftType)
		conditions = append(conditions, fmt.Sprintf("s.shift_type = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("s.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("s.date <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *Repository) GetShifts(filter *domain.ShiftFilter) ([]*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	whereClause, args := buildShiftFilter(filter)

	query := `
		SELECT s.id, s.date, s.shift_type, s.unit, s.required_volunteers, s.status, s.shift_note, s.shared_note, s.created_at, s.updated_at, s.version
		FROM shifts s ` + whereClause + `
		ORDER BY s.date, s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	shiftsMap := make(map[int64]*domain.Shift)

	for rows.Next() {
		shift := &domain.Shift{
			RegisteredVolunteers: make([]domain.ShiftRegistration, 0),
			WaitlistVolunteers:   make([]domain.ShiftWaitlistEntry, 0),
		}
		dst := []any{&shift.ID, &shift.Date, &shift.ShiftType, &shift.Unit, &shift.RequiredVolunteers, &shift.Status, &shift.ShiftNote, &shift.SharedNote, &shift.CreatedAt, &shift.UpdatedAt, &shift.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
		shiftsMap[shift.ID] = shift
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(shifts) == 0 {
		return shifts, nil
	}

	// 用同样的筛选条件把两个子表各查一遍，然后按 shift_id 回填
	query = `
		SELECT reg.shift_id, reg.user_id, reg.volunteer_type, reg.arrival_time, reg.leaving_time, reg.note, reg.approved, reg.waitlist
		FROM shift_registrations reg
		JOIN shifts s ON s.id = reg.shift_id ` + whereClause + `
		ORDER BY reg.id
	`

	rows, err = r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shiftID int64
		reg := domain.ShiftRegistration{}
		dst := []any{&shiftID, &reg.UserID, &reg.VolunteerType, &reg.ArrivalTime, &reg.LeavingTime, &reg.Note, &reg.Approved, &reg.Waitlist}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if shift, exists := shiftsMap[shiftID]; exists {
			shift.RegisteredVolunteers = append(shift.RegisteredVolunteers, reg)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT wl.shift_id, wl.user_id, wl.volunteer_type, wl.registered_at
		FROM shift_waitlist wl
		JOIN shifts s ON s.id = wl.shift_id ` + whereClause + `
		ORDER BY wl.registered_at, wl.id
	`

	rows, err = r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shiftID int64
		entry := domain.ShiftWaitlistEntry{}
		if err := rows.Scan(&shiftID, &entry.UserID, &entry.VolunteerType, &entry.RegisteredAt); err != nil {
			return nil, err
		}
		if shift, exists := shiftsMap[shiftID]; exists {
			shift.WaitlistVolunteers = append(shift.WaitlistVolunteers, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// SaveShift 整体替换班次及其两个名单
// 版本号校验失败（班次被并发修改过）时返回 sql.ErrNoRows
func (r *Repository) SaveShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shifts
		SET
			date = $1,
			shift_type = $2,
			unit = $3,
			required_volunteers = $4,
			status = $5,
			shift_note = $6,
			shared_note = $7,
			updated_at = now(),
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING updated_at, version
	`

	args := []any{shift.Date, shift.ShiftType, shift.Unit, shift.RequiredVolunteers, shift.Status, shift.ShiftNote, shift.SharedNote, shift.ID, shift.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.UpdatedAt, &shift.Version); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_registrations WHERE shift_id = $1`, shift.ID); err != nil {
		return err
	}

	for _, reg := range shift.RegisteredVolunteers {
		query = `
			INSERT INTO shift_registrations (shift_id, user_id, volunteer_type, arrival_time, leaving_time, note, approved, waitlist)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		params := []any{shift.ID, reg.UserID, reg.VolunteerType, reg.ArrivalTime, reg.LeavingTime, reg.Note, reg.Approved, reg.Waitlist}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_waitlist WHERE shift_id = $1`, shift.ID); err != nil {
		return err
	}

	for _, entry := range shift.WaitlistVolunteers {
		query = `
			INSERT INTO shift_waitlist (shift_id, user_id, volunteer_type, registered_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, shift.ID, entry.UserID, entry.VolunteerType, entry.RegisteredAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM shifts WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
