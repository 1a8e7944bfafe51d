package catalog

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var categoryColumns = []string{"id", "title", "created_at"}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	c.CreatedAt = time.Now().UTC()
	query, args, err := r.psql.Insert("categories").
		Columns("title", "created_at").
		Values(c.Title, c.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		return mapTitleConflict(err, "categories_title_key", ErrDuplicateCategory)
	}
	return nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	query, args, err := r.psql.Select(categoryColumns...).From("categories").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	categories := []Category{}
	if err := pgxscan.Select(ctx, r.db, &categories, query, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	query, args, err := r.psql.Select(categoryColumns...).From("categories").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var c Category
	if err := pgxscan.Get(ctx, r.db, &c, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrCategoryNotFound.WithCause(err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, c *Category) error {
	query, args, err := r.psql.Update("categories").
		Set("title", c.Title).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapTitleConflict(err, "categories_title_key", ErrDuplicateCategory)
	}
	if ct.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes the category; its works stay and lose their category.
func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", id, ErrCategoryNotFound)
}
