package catalog

import (
	"context"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
)

// ServiceInput is the content of a service listing. On update a nil Image keeps the current one.
type ServiceInput struct {
	Title       string
	Description string
	Image       *imagehost.Upload
}

func (s *service) CreateService(ctx context.Context, in ServiceInput) (*Offering, error) {
	if in.Image == nil {
		return nil, ErrImageRequired.WithDetail("img_url is required")
	}
	urls, err := s.upload(ctx, *in.Image)
	if err != nil {
		return nil, err
	}
	svc := &Offering{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImgURL:      urls[0],
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		s.discard(ctx, urls...)
		return nil, err
	}
	s.logger.Info("service created", "service_id", svc.ID)
	return svc, nil
}

func (s *service) ListServices(ctx context.Context) ([]Offering, error) {
	return s.repo.ListServices(ctx)
}

func (s *service) GetService(ctx context.Context, id int64) (*Offering, error) {
	return s.repo.GetService(ctx, id)
}

func (s *service) UpdateService(ctx context.Context, id int64, in ServiceInput) (*Offering, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	var previous string
	if in.Image != nil {
		urls, err := s.upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		previous, svc.ImgURL = svc.ImgURL, urls[0]
	}
	svc.Title = strings.TrimSpace(in.Title)
	svc.Description = in.Description

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		if in.Image != nil {
			s.discard(ctx, svc.ImgURL)
		}
		return nil, err
	}
	s.discard(ctx, previous)
	return svc, nil
}

func (s *service) DeleteService(ctx context.Context, id int64) error {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, svc.ImgURL)
	s.logger.Info("service deleted", "service_id", id)
	return nil
}
