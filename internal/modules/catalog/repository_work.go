package catalog

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/delordemm1/agency-portfolio-api/internal/database"
)

var workColumns = []string{
	"id", "title", "description", "img_url", "other_image_urls", "category_id", "created_at",
}

func (r *repository) CreateWork(ctx context.Context, w *Work) error {
	w.CreatedAt = time.Now().UTC()
	if w.OtherImageURLs == nil {
		w.OtherImageURLs = []string{}
	}
	query, args, err := r.psql.Insert("works").
		Columns("title", "description", "img_url", "other_image_urls", "category_id", "created_at").
		Values(w.Title, w.Description, w.ImgURL, w.OtherImageURLs, w.CategoryID, w.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&w.ID); err != nil {
		return mapWorkWriteError(err)
	}
	return nil
}

// ListWorks pages through works, newest first.
func (r *repository) ListWorks(ctx context.Context, f WorkFilter) ([]Work, error) {
	q := r.psql.Select(workColumns...).From("works")
	if f.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *f.CategoryID})
	}
	query, args, err := q.OrderBy("created_at DESC", "id DESC").
		Offset(uint64(f.Skip)).
		Limit(uint64(f.Limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	works := []Work{}
	if err := pgxscan.Select(ctx, r.db, &works, query, args...); err != nil {
		return nil, err
	}
	return works, nil
}

func (r *repository) GetWork(ctx context.Context, id int64) (*Work, error) {
	query, args, err := r.psql.Select(workColumns...).From("works").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var w Work
	if err := pgxscan.Get(ctx, r.db, &w, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrWorkNotFound.WithCause(err)
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) UpdateWork(ctx context.Context, w *Work) error {
	query, args, err := r.psql.Update("works").
		Set("title", w.Title).
		Set("description", w.Description).
		Set("img_url", w.ImgURL).
		Set("other_image_urls", w.OtherImageURLs).
		Set("category_id", w.CategoryID).
		Where(squirrel.Eq{"id": w.ID}).
		ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWorkWriteError(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrWorkNotFound
	}
	return nil
}

func (r *repository) DeleteWork(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "works", id, ErrWorkNotFound)
}

func (r *repository) LatestWorksPerCategory(ctx context.Context, n int) ([]Work, error) {
	ranked := r.psql.Select(append(workColumns,
		"row_number() OVER (PARTITION BY category_id ORDER BY created_at DESC, id DESC) AS rn")...).
		From("works").
		Where("category_id IS NOT NULL")

	query, args, err := r.psql.Select(workColumns...).
		FromSelect(ranked, "ranked").
		Where(squirrel.LtOrEq{"rn": n}).
		OrderBy("category_id", "rn").
		ToSql()
	if err != nil {
		return nil, err
	}
	works := []Work{}
	if err := pgxscan.Select(ctx, r.db, &works, query, args...); err != nil {
		return nil, err
	}
	return works, nil
}

func mapWorkWriteError(err error) error {
	if name, ok := database.IsForeignKeyViolation(err); ok && name == "works_category_id_fkey" {
		return ErrCategoryNotFound.WithCause(err)
	}
	return mapTitleConflict(err, "works_title_key", ErrDuplicateWork)
}
