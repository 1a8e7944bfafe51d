package catalog

import (
	"context"

	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
)

// Dashboard is the signed-in user's profile together with the works they liked.
type Dashboard struct {
	User       *user.User
	LikedWorks []Work
}

func (s *service) Like(ctx context.Context, userID, workID int64) error {
	if _, err := s.repo.GetWork(ctx, workID); err != nil {
		return err
	}
	return s.repo.AddLike(ctx, userID, workID)
}

func (s *service) Unlike(ctx context.Context, userID, workID int64) error {
	return s.repo.RemoveLike(ctx, userID, workID)
}

func (s *service) IsLiked(ctx context.Context, userID, workID int64) (bool, error) {
	if _, err := s.repo.GetWork(ctx, workID); err != nil {
		return false, err
	}
	return s.repo.IsLiked(ctx, userID, workID)
}

// Home groups the newest works by category title. Every category appears, even without works.
func (s *service) Home(ctx context.Context) (map[string][]Work, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	works, err := s.repo.LatestWorksPerCategory(ctx, s.perHome)
	if err != nil {
		return nil, err
	}

	titles := make(map[int64]string, len(categories))
	out := make(map[string][]Work, len(categories))
	for _, c := range categories {
		titles[c.ID] = c.Title
		out[c.Title] = []Work{}
	}
	for _, w := range works {
		if w.CategoryID == nil {
			continue
		}
		if title, ok := titles[*w.CategoryID]; ok && len(out[title]) < s.perHome {
			out[title] = append(out[title], w)
		}
	}
	return out, nil
}

func (s *service) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	u, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	works, err := s.repo.LikedWorks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: u, LikedWorks: works}, nil
}
