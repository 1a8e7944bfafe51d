package catalog

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var serviceColumns = []string{"id", "title", "description", "img_url", "created_at"}

func (r *repository) CreateService(ctx context.Context, s *Offering) error {
	s.CreatedAt = time.Now().UTC()
	query, args, err := r.psql.Insert("services").
		Columns("title", "description", "img_url", "created_at").
		Values(s.Title, s.Description, s.ImgURL, s.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID); err != nil {
		return mapTitleConflict(err, "services_title_key", ErrDuplicateService)
	}
	return nil
}

func (r *repository) ListServices(ctx context.Context) ([]Offering, error) {
	query, args, err := r.psql.Select(serviceColumns...).From("services").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	services := []Offering{}
	if err := pgxscan.Select(ctx, r.db, &services, query, args...); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repository) GetService(ctx context.Context, id int64) (*Offering, error) {
	query, args, err := r.psql.Select(serviceColumns...).From("services").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var s Offering
	if err := pgxscan.Get(ctx, r.db, &s, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrServiceNotFound.WithCause(err)
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateService(ctx context.Context, s *Offering) error {
	query, args, err := r.psql.Update("services").
		Set("title", s.Title).
		Set("description", s.Description).
		Set("img_url", s.ImgURL).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapTitleConflict(err, "services_title_key", ErrDuplicateService)
	}
	if ct.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *repository) DeleteService(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "services", id, ErrServiceNotFound)
}
