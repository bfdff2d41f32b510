package stoolap

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentCols = `
	id, client_id, pet_id, service_id, staff_id,
	scheduled_at, status, notes,
	cancel_requested, cancel_reason,
	created_at, updated_at
`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		a.ID, a.ClientID, a.PetID, a.ServiceID, a.StaffID,
		a.ScheduledAt, a.Status, a.Notes,
		a.CancelRequested, a.CancelReason,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE id = ?
	`, id)

	a, err := scanAppointment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			service_id = ?,
			staff_id = ?,
			scheduled_at = ?,
			status = ?,
			notes = ?,
			cancel_requested = ?,
			cancel_reason = ?,
			updated_at = ?
		WHERE id = ?
	`,
		a.ServiceID, a.StaffID, a.ScheduledAt, a.Status, a.Notes,
		a.CancelRequested, a.CancelReason, a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) ListByClient(ctx context.Context, clientID string) ([]appointments.Appointment, error) {
	return r.list(ctx, `WHERE client_id = ?`, clientID)
}

func (r *AppointmentsRepo) ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	return r.list(ctx, `WHERE pet_id = ?`, petID)
}

func (r *AppointmentsRepo) ListAll(ctx context.Context) ([]appointments.Appointment, error) {
	return r.list(ctx, ``)
}

func (r *AppointmentsRepo) list(ctx context.Context, where string, args ...any) ([]appointments.Appointment, error) {
	q := `SELECT ` + appointmentCols + ` FROM appointments ` + where + ` ORDER BY scheduled_at`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []appointments.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(scan func(...any) error) (appointments.Appointment, error) {
	var a appointments.Appointment
	if err := scan(
		&a.ID, &a.ClientID, &a.PetID, &a.ServiceID, &a.StaffID,
		&a.ScheduledAt, &a.Status, &a.Notes,
		&a.CancelRequested, &a.CancelReason,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}
	return a, nil
}
