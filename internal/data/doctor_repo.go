package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data/database"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data/pgxutil"
	"github.com/thankyoudoc/thankyoudoc-api/internal/domain/model"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
)

// DoctorRepo provides database operations for doctors.
type DoctorRepo struct {
	DB *sql.DB
}

var _ core.DoctorRepository = (*DoctorRepo)(nil)

// NewDoctorRepo creates a new DoctorRepo.
func NewDoctorRepo(db *sql.DB) *DoctorRepo {
	return &DoctorRepo{DB: db}
}

const doctorReturning = `id, name, specialty, hospital, city, experience_years, consultation_fee, available, created_at, updated_at`

const (
	doctorInsertQuery = `
		INSERT INTO doctors (name, specialty, hospital, city, experience_years, consultation_fee, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + doctorReturning

	doctorGetByIDQuery = `SELECT ` + doctorReturning + ` FROM doctors WHERE id = $1`
)

func doctorColumns() []string {
	return strings.Split(strings.ReplaceAll(doctorReturning, " ", ""), ",")
}

// Create inserts a new doctor.
func (r *DoctorRepo) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}

	return r.queryOne(ctx, doctorInsertQuery,
		req.Name,
		req.Specialty,
		req.Hospital,
		req.City,
		req.ExperienceYears,
		req.ConsultationFee,
		req.IsAvailable(),
	)
}

// GetByID retrieves a doctor by ID. A missing row maps to a NotFound AppError.
func (r *DoctorRepo) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	return r.queryOne(ctx, doctorGetByIDQuery, id)
}

// List retrieves doctors newest first with optional specialty and availability filters.
func (r *DoctorRepo) List(ctx context.Context, opts model.DoctorListOptions) ([]*model.Doctor, error) {
	opts = opts.Normalize()
	query, args := database.BuildListQuery(buildDoctorQueryOptions(opts))

	var rowsOut []model.Doctor
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Doctor])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	res := make([]*model.Doctor, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update applies the non-nil fields of req. updated_at is always refreshed.
func (r *DoctorRepo) Update(ctx context.Context, id string, req model.UpdateDoctorRequest) (*model.Doctor, error) {
	setClause, args := buildDoctorUpdateClause(req)
	if setClause == "" {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := "UPDATE doctors SET " + setClause + ", updated_at = now() WHERE id = $" +
		strconv.Itoa(len(args)) + " RETURNING " + doctorReturning
	return r.queryOne(ctx, query, args...)
}

// Delete deletes a doctor. Doctors with appointments are protected by a foreign key
// and return a ForeignKey AppError.
func (r *DoctorRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return affected > 0, nil
}

func (r *DoctorRepo) queryOne(ctx context.Context, q string, args ...any) (*model.Doctor, error) {
	var out model.Doctor
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Doctor])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func buildDoctorQueryOptions(opts model.DoctorListOptions) *database.ListQueryOptions {
	queryOpts := []database.ListQueryOption{
		database.WithColumns(doctorColumns()...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	}
	if opts.Specialty != nil && strings.TrimSpace(*opts.Specialty) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereRawCond("lower(specialty) = lower($1)", strings.TrimSpace(*opts.Specialty)),
		))
	}
	if opts.AvailableOnly {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("available", database.Equal, true),
		))
	}
	return database.NewListQueryOptions("doctors", queryOpts...)
}

func buildDoctorUpdateClause(req model.UpdateDoctorRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 8)
	set := func(col string, v any) {
		args = append(args, v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Specialty != nil {
		set("specialty", strings.TrimSpace(*req.Specialty))
	}
	if req.Hospital != nil {
		set("hospital", strings.TrimSpace(*req.Hospital))
	}
	if req.City != nil {
		set("city", strings.TrimSpace(*req.City))
	}
	if req.ExperienceYears != nil {
		set("experience_years", *req.ExperienceYears)
	}
	if req.ConsultationFee != nil {
		set("consultation_fee", *req.ConsultationFee)
	}
	if req.Available != nil {
		set("available", *req.Available)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	return strings.Join(setParts, ", "), args
}
