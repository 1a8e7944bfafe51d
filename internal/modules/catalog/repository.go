package catalog

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/delordemm1/agency-portfolio-api/internal/database"
	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
)

// Repository is the catalog's storage.
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateWork(ctx context.Context, w *Work) error
	ListWorks(ctx context.Context, f WorkFilter) ([]Work, error)
	GetWork(ctx context.Context, id int64) (*Work, error)
	UpdateWork(ctx context.Context, w *Work) error
	DeleteWork(ctx context.Context, id int64) error
	// LatestWorksPerCategory returns up to n newest works of every category, newest first.
	LatestWorksPerCategory(ctx context.Context, n int) ([]Work, error)

	CreateService(ctx context.Context, s *Offering) error
	ListServices(ctx context.Context) ([]Offering, error)
	GetService(ctx context.Context, id int64) (*Offering, error)
	UpdateService(ctx context.Context, s *Offering) error
	DeleteService(ctx context.Context, id int64) error

	AddLike(ctx context.Context, userID, workID int64) error
	RemoveLike(ctx context.Context, userID, workID int64) error
	IsLiked(ctx context.Context, userID, workID int64) (bool, error)
	// LikedAmong returns the subset of workIDs the user has liked.
	LikedAmong(ctx context.Context, userID int64, workIDs []int64) (map[int64]bool, error)
	LikedWorks(ctx context.Context, userID int64) ([]Work, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// mapTitleConflict turns a unique violation on constraint into dup.
func mapTitleConflict(err error, constraint string, dup *domainerr.Error) error {
	if name, ok := database.IsUniqueViolation(err); ok && name == constraint {
		return dup.WithCause(err)
	}
	return err
}

// deleteByID removes one row from table, reporting notFound when nothing matched.
func (r *repository) deleteByID(ctx context.Context, table string, id int64, notFound error) error {
	query, args, err := r.psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
