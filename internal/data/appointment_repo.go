package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data/database"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data/pgxutil"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
)

// AppointmentRepo provides database operations for appointments.
type AppointmentRepo struct {
	DB *sql.DB
}

var (
	_ core.AppointmentRepository      = (*AppointmentRepo)(nil)
	_ core.AppointmentSweepRepository = (*AppointmentRepo)(nil)
)

// NewAppointmentRepo creates a new AppointmentRepo.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo {
	return &AppointmentRepo{DB: db}
}

const appointmentReturning = `id, user_id, doctor_id, slot_at, status, payment_method, notes, created_at, updated_at`

const (
	appointmentInsertQuery = `
		INSERT INTO appointments (user_id, doctor_id, slot_at, status, payment_method, notes)
		VALUES ($1, $2, $3, 'booked', $4, $5)
		RETURNING ` + appointmentReturning

	appointmentGetByIDQuery = `SELECT ` + appointmentReturning + ` FROM appointments WHERE id = $1`

	appointmentTransitionQuery = `
		UPDATE appointments SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + appointmentReturning

	// SKIP LOCKED lets concurrent sweepers split the backlog.
	appointmentCompletePastQuery = `
		UPDATE appointments SET status = 'completed', updated_at = now()
		WHERE id IN (
			SELECT id FROM appointments
			WHERE status = 'booked' AND slot_at < $1
			ORDER BY slot_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`
)

func appointmentColumns() []string {
	return strings.Split(strings.ReplaceAll(appointmentReturning, " ", ""), ",")
}

// Create books a slot. A second live booking of the same doctor slot violates
// uq_appointments_doctor_slot and maps to a Conflict AppError.
func (r *AppointmentRepo) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	return r.queryOne(ctx, appointmentInsertQuery,
		req.UserID,
		req.DoctorID,
		req.SlotAt.UTC(),
		string(req.PaymentMethod),
		strings.TrimSpace(req.Notes),
	)
}

// GetByID retrieves an appointment by ID.
func (r *AppointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	return r.queryOne(ctx, appointmentGetByIDQuery, id)
}

// ListByUser lists a user's appointments, latest slot first.
func (r *AppointmentRepo) ListByUser(
	ctx context.Context,
	opts model.AppointmentListOptions,
) ([]*model.Appointment, error) {
	if strings.TrimSpace(opts.UserID) == "" {
		return nil, ErrIDRequired
	}
	limit, offset := model.ClampPage(opts.Limit, opts.Offset)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(appointmentColumns()...),
		database.WithCondition(database.WhereCond("user_id", database.Equal, opts.UserID)),
		database.WithOrderBy("slot_at", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Status != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("status", database.Equal, string(*opts.Status)),
		))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("appointments", queryOpts...))

	var rowsOut []model.Appointment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Appointment])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	res := make([]*model.Appointment, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Transition performs a compare-and-set on status. ok is false when the row
// does not exist or no longer holds p.From.
func (r *AppointmentRepo) Transition(
	ctx context.Context,
	p core.TransitionParams,
) (*model.Appointment, bool, error) {
	out, err := r.queryOne(ctx, appointmentTransitionQuery, p.ID, string(p.From), string(p.To))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return out, true, nil
}

// CompletePast marks up to limit booked appointments whose slot is before the cutoff as completed.
func (r *AppointmentRepo) CompletePast(ctx context.Context, before time.Time, limit int) (int64, error) {
	if limit <= 0 {
		return 0, errors.New("limit must be positive")
	}
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, appointmentCompletePastQuery, before.UTC(), limit)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return affected, nil
}

func (r *AppointmentRepo) queryOne(ctx context.Context, q string, args ...any) (*model.Appointment, error) {
	var out model.Appointment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Appointment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
