package stoolap

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/medicalrecords"
)

type MedicalRecordsRepo struct {
	db *sql.DB
}

func NewMedicalRecordsRepo(db *sql.DB) *MedicalRecordsRepo {
	return &MedicalRecordsRepo{db: db}
}

const recordCols = `
	id, appointment_id, pet_id, client_id, staff_id,
	diagnosis, treatment, medication, follow_up,
	created_at, updated_at
`

func (r *MedicalRecordsRepo) Create(ctx context.Context, rec medicalrecords.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (`+recordCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`,
		rec.ID, rec.AppointmentID, rec.PetID, rec.ClientID, rec.StaffID,
		rec.Diagnosis, rec.Treatment, rec.Medication, rec.FollowUp,
		rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (r *MedicalRecordsRepo) GetByID(ctx context.Context, id string) (medicalrecords.Record, error) {
	return r.get(ctx, `WHERE id = ?`, id)
}

func (r *MedicalRecordsRepo) GetByAppointment(ctx context.Context, appointmentID string) (medicalrecords.Record, error) {
	return r.get(ctx, `WHERE appointment_id = ?`, appointmentID)
}

func (r *MedicalRecordsRepo) get(ctx context.Context, where string, arg any) (medicalrecords.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordCols+` FROM medical_records `+where, arg)

	var rec medicalrecords.Record
	if err := row.Scan(
		&rec.ID, &rec.AppointmentID, &rec.PetID, &rec.ClientID, &rec.StaffID,
		&rec.Diagnosis, &rec.Treatment, &rec.Medication, &rec.FollowUp,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medicalrecords.Record{}, medicalrecords.ErrNotFound
		}
		return medicalrecords.Record{}, err
	}
	return rec, nil
}

func (r *MedicalRecordsRepo) Update(ctx context.Context, rec medicalrecords.Record) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET
			diagnosis = ?,
			treatment = ?,
			medication = ?,
			follow_up = ?,
			updated_at = ?
		WHERE id = ?
	`,
		rec.Diagnosis, rec.Treatment, rec.Medication, rec.FollowUp, rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicalrecords.ErrNotFound
	}
	return nil
}

func (r *MedicalRecordsRepo) ListByPet(ctx context.Context, petID string) ([]medicalrecords.Record, error) {
	return r.list(ctx, `WHERE pet_id = ?`, petID)
}

func (r *MedicalRecordsRepo) ListByClient(ctx context.Context, clientID string) ([]medicalrecords.Record, error) {
	return r.list(ctx, `WHERE client_id = ?`, clientID)
}

func (r *MedicalRecordsRepo) list(ctx context.Context, where string, arg any) ([]medicalrecords.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordCols+` FROM medical_records `+where+` ORDER BY created_at DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []medicalrecords.Record
	for rows.Next() {
		var rec medicalrecords.Record
		if err := rows.Scan(
			&rec.ID, &rec.AppointmentID, &rec.PetID, &rec.ClientID, &rec.StaffID,
			&rec.Diagnosis, &rec.Treatment, &rec.Medication, &rec.FollowUp,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
