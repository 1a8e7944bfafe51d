package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
	"github.com/delordemm1/agency-portfolio-api/internal/notification"
)

// Service defines the catalog's business operations.
type Service interface {
	// Categories
	CreateCategory(ctx context.Context, title string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, title string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// Works. viewerID personalises liked_by_user; 0 means anonymous.
	CreateWork(ctx context.Context, in WorkInput) (*Work, error)
	ListWorks(ctx context.Context, viewerID int64, f WorkFilter) ([]WorkView, error)
	GetWork(ctx context.Context, viewerID, id int64) (*WorkView, error)
	UpdateWork(ctx context.Context, id int64, in WorkInput) (*Work, error)
	DeleteWork(ctx context.Context, id int64) error
	RequestOrder(ctx context.Context, customer *user.User, workID int64, message string) error

	// Services
	CreateService(ctx context.Context, in ServiceInput) (*Offering, error)
	ListServices(ctx context.Context) ([]Offering, error)
	GetService(ctx context.Context, id int64) (*Offering, error)
	UpdateService(ctx context.Context, id int64, in ServiceInput) (*Offering, error)
	DeleteService(ctx context.Context, id int64) error

	// Likes
	Like(ctx context.Context, userID, workID int64) error
	Unlike(ctx context.Context, userID, workID int64) error
	IsLiked(ctx context.Context, userID, workID int64) (bool, error)

	Home(ctx context.Context) (map[string][]Work, error)
	Dashboard(ctx context.Context, userID int64) (*Dashboard, error)
}

// Profiles is the part of the user module the dashboard reads.
type Profiles interface {
	GetProfile(ctx context.Context, userID int64) (*user.User, error)
}

// Config holds the dependencies for the catalog service.
type Config struct {
	Repo     Repository
	Images   imagehost.Host
	Notifier notification.Service
	Profiles Profiles
	Logger   *slog.Logger
	// ContactTo is the agency mailbox receiving order requests.
	ContactTo string
	// HomeWorksPerCategory caps each category on the home page.
	HomeWorksPerCategory int
}

type service struct {
	repo      Repository
	images    imagehost.Host
	notifier  notification.Service
	profiles  Profiles
	logger    *slog.Logger
	contactTo string
	perHome   int
}

func NewService(cfg *Config) Service {
	perHome := cfg.HomeWorksPerCategory
	if perHome <= 0 {
		perHome = 4
	}
	return &service{
		repo:      cfg.Repo,
		images:    cfg.Images,
		notifier:  cfg.Notifier,
		profiles:  cfg.Profiles,
		logger:    cfg.Logger,
		contactTo: cfg.ContactTo,
		perHome:   perHome,
	}
}

// --- Categories ---

func (s *service) CreateCategory(ctx context.Context, title string) (*Category, error) {
	c := &Category{Title: strings.TrimSpace(title)}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("category created", "category_id", c.ID)
	return c, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) UpdateCategory(ctx context.Context, id int64, title string) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Title = strings.TrimSpace(title)
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", "category_id", id)
	return nil
}

// --- Images ---

// upload stores every file, removing the ones already stored when a later one fails.
func (s *service) upload(ctx context.Context, files ...imagehost.Upload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.images.Upload(ctx, f)
		if err != nil {
			s.discard(ctx, urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// discard deletes images best-effort; the request never fails because of it.
func (s *service) discard(ctx context.Context, urls ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		if url == "" {
			continue
		}
		if !s.images.Delete(ctx, url) {
			s.logger.Warn("image left behind", "url", url)
		}
	}
}
