package catalog

import (
	"context"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

// WorkInput is the content of a create or update. On update a nil Image keeps the current
// main image and an empty OtherImages keeps the current gallery.
type WorkInput struct {
	Title       string
	Description string
	CategoryID  *int64
	Image       *imagehost.Upload
	OtherImages []imagehost.Upload
}

// WorkView is a work as seen by one viewer.
type WorkView struct {
	Work
	LikedByUser bool
}

func (s *service) CreateWork(ctx context.Context, in WorkInput) (*Work, error) {
	if in.Image == nil {
		return nil, ErrImageRequired.WithDetail("img_url is required")
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	urls, err := s.upload(ctx, append([]imagehost.Upload{*in.Image}, in.OtherImages...)...)
	if err != nil {
		return nil, err
	}
	w := &Work{
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		ImgURL:         urls[0],
		OtherImageURLs: urls[1:],
		CategoryID:     in.CategoryID,
	}
	if err := s.repo.CreateWork(ctx, w); err != nil {
		s.discard(ctx, urls...)
		return nil, err
	}
	s.logger.Info("work created", "work_id", w.ID, "images", len(urls))
	return w, nil
}

func (s *service) ListWorks(ctx context.Context, viewerID int64, f WorkFilter) ([]WorkView, error) {
	works, err := s.repo.ListWorks(ctx, f)
	if err != nil {
		return nil, err
	}
	liked := map[int64]bool{}
	if viewerID != 0 && len(works) > 0 {
		ids := make([]int64, len(works))
		for i := range works {
			ids[i] = works[i].ID
		}
		if liked, err = s.repo.LikedAmong(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	views := make([]WorkView, len(works))
	for i := range works {
		views[i] = WorkView{Work: works[i], LikedByUser: liked[works[i].ID]}
	}
	return views, nil
}

func (s *service) GetWork(ctx context.Context, viewerID, id int64) (*WorkView, error) {
	w, err := s.repo.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &WorkView{Work: *w}
	if viewerID != 0 {
		if view.LikedByUser, err = s.repo.IsLiked(ctx, viewerID, id); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// UpdateWork replaces the work's content. Images that are replaced are removed from the host
// once the new state is stored.
func (s *service) UpdateWork(ctx context.Context, id int64, in WorkInput) (*Work, error) {
	w, err := s.repo.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var uploads []imagehost.Upload
	if in.Image != nil {
		uploads = append(uploads, *in.Image)
	}
	uploads = append(uploads, in.OtherImages...)
	fresh, err := s.upload(ctx, uploads...)
	if err != nil {
		return nil, err
	}

	urls := fresh
	var replaced []string
	if in.Image != nil {
		replaced = append(replaced, w.ImgURL)
		w.ImgURL, urls = urls[0], urls[1:]
	}
	if len(in.OtherImages) > 0 {
		replaced = append(replaced, w.OtherImageURLs...)
		w.OtherImageURLs = urls
	}
	w.Title = strings.TrimSpace(in.Title)
	w.Description = in.Description
	if in.CategoryID != nil {
		w.CategoryID = in.CategoryID
	}

	if err := s.repo.UpdateWork(ctx, w); err != nil {
		s.discard(ctx, fresh...)
		return nil, err
	}
	s.discard(ctx, replaced...)
	s.logger.Info("work updated", "work_id", w.ID, "replaced_images", len(replaced))
	return w, nil
}

func (s *service) DeleteWork(ctx context.Context, id int64) error {
	w, err := s.repo.GetWork(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteWork(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, w.Images()...)
	s.logger.Info("work deleted", "work_id", id)
	return nil
}

// RequestOrder emails the agency mailbox on behalf of a signed-in customer.
func (s *service) RequestOrder(ctx context.Context, customer *user.User, workID int64, message string) error {
	w, err := s.repo.GetWork(ctx, workID)
	if err != nil {
		return err
	}
	err = notification.SendTemplate(ctx, s.notifier, templates.OrderRequest, "", []string{s.contactTo},
		templates.OrderRequestData{
			WorkID:        w.ID,
			WorkTitle:     w.Title,
			CustomerName:  strings.TrimSpace(customer.FirstName + " " + customer.LastName),
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone(),
			Message:       message,
		})
	if err != nil {
		return err
	}
	s.logger.Info("order request queued", "work_id", w.ID, "user_id", customer.ID)
	return nil
}

func (s *service) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.repo.GetCategory(ctx, *id)
	return err
}
