package catalog

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/delordemm1/agency-portfolio-api/internal/database"
)

// --- Likes ---

func (r *repository) AddLike(ctx context.Context, userID, workID int64) error {
	query, args, err := r.psql.Insert("liked_works").
		Columns("user_id", "work_id", "created_at").
		Values(userID, workID, time.Now().UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return ErrAlreadyLiked.WithCause(err)
		}
		if name, ok := database.IsForeignKeyViolation(err); ok && name == "liked_works_work_id_fkey" {
			return ErrWorkNotFound.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *repository) RemoveLike(ctx context.Context, userID, workID int64) error {
	query, args, err := r.psql.Delete("liked_works").
		Where(squirrel.Eq{"user_id": userID, "work_id": workID}).
		ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLikeNotFound
	}
	return nil
}

func (r *repository) IsLiked(ctx context.Context, userID, workID int64) (bool, error) {
	query, args, err := r.psql.Select("COUNT(*)").From("liked_works").
		Where(squirrel.Eq{"user_id": userID, "work_id": workID}).
		ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) LikedAmong(ctx context.Context, userID int64, workIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool, len(workIDs))
	if len(workIDs) == 0 {
		return liked, nil
	}
	query, args, err := r.psql.Select("work_id").From("liked_works").
		Where(squirrel.Eq{"user_id": userID, "work_id": workIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := pgxscan.Select(ctx, r.db, &ids, query, args...); err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// LikedWorks returns the user's liked works, most recently liked first.
func (r *repository) LikedWorks(ctx context.Context, userID int64) ([]Work, error) {
	cols := make([]string, len(workColumns))
	for i, c := range workColumns {
		cols[i] = "w." + c
	}
	query, args, err := r.psql.Select(cols...).
		From("liked_works l").
		Join("works w ON w.id = l.work_id").
		Where(squirrel.Eq{"l.user_id": userID}).
		OrderBy("l.created_at DESC").
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
