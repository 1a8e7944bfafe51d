package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type likeKey struct{ user, work int64 }

// memRepo is an in-memory Repository with the schema's unique titles and foreign keys.
type memRepo struct {
	mu         sync.Mutex
	categories map[int64]Category
	works      map[int64]Work
	offerings  map[int64]Offering
	likes      map[likeKey]time.Time
	nextID     int64
	base       time.Time
	failWrite  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[int64]Category{},
		works:      map[int64]Work{},
		offerings:  map[int64]Offering{},
		likes:      map[likeKey]time.Time{},
		base:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// stamp hands out increasing ids and creation times so ordering is deterministic.
func (r *memRepo) stamp() (int64, time.Time) {
	r.nextID++
	return r.nextID, r.base.Add(time.Duration(r.nextID) * time.Second)
}

func (r *memRepo) CreateCategory(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.categories {
		if other.Title == c.Title {
			return ErrDuplicateCategory
		}
	}
	c.ID, c.CreatedAt = r.stamp()
	r.categories[c.ID] = *c
	return nil
}

func (r *memRepo) ListCategories(context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Category{}
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) GetCategory(_ context.Context, id int64) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (r *memRepo) UpdateCategory(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return ErrCategoryNotFound
	}
	for id, other := range r.categories {
		if id != c.ID && other.Title == c.Title {
			return ErrDuplicateCategory
		}
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *memRepo) DeleteCategory(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(r.categories, id)
	for wid, w := range r.works {
		if w.CategoryID != nil && *w.CategoryID == id {
			w.CategoryID = nil
			r.works[wid] = w
		}
	}
	return nil
}

func (r *memRepo) checkWork(w *Work) error {
	if r.failWrite != nil {
		return r.failWrite
	}
	if w.CategoryID != nil {
		if _, ok := r.categories[*w.CategoryID]; !ok {
			return ErrCategoryNotFound
		}
	}
	for id, other := range r.works {
		if id != w.ID && other.Title == w.Title {
			return ErrDuplicateWork
		}
	}
	return nil
}

func (r *memRepo) CreateWork(_ context.Context, w *Work) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkWork(w); err != nil {
		return err
	}
	w.ID, w.CreatedAt = r.stamp()
	r.works[w.ID] = *w
	return nil
}

// newestFirst returns the works matching keep ordered like the SQL listing.
func (r *memRepo) newestFirst(keep func(Work) bool) []Work {
	out := []Work{}
	for _, w := range r.works {
		if keep(w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memRepo) ListWorks(_ context.Context, f WorkFilter) ([]Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst(func(w Work) bool {
		return f.CategoryID == nil || (w.CategoryID != nil && *w.CategoryID == *f.CategoryID)
	})
	skip := min(f.Skip, len(all))
	return all[skip:min(skip+f.Limit, len(all))], nil
}

func (r *memRepo) GetWork(_ context.Context, id int64) (*Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.works[id]
	if !ok {
		return nil, ErrWorkNotFound
	}
	return &w, nil
}

func (r *memRepo) UpdateWork(_ context.Context, w *Work) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.works[w.ID]; !ok {
		return ErrWorkNotFound
	}
	if err := r.checkWork(w); err != nil {
		return err
	}
	r.works[w.ID] = *w
	return nil
}

func (r *memRepo) DeleteWork(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.works[id]; !ok {
		return ErrWorkNotFound
	}
	delete(r.works, id)
	for k := range r.likes {
		if k.work == id {
			delete(r.likes, k)
		}
	}
	return nil
}

func (r *memRepo) LatestWorksPerCategory(_ context.Context, n int) ([]Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]int{}
	out := []Work{}
	for _, w := range r.newestFirst(func(w Work) bool { return w.CategoryID != nil }) {
		if seen[*w.CategoryID] < n {
			seen[*w.CategoryID]++
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *memRepo) CreateService(_ context.Context, s *Offering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	for _, other := range r.offerings {
		if other.Title == s.Title {
			return ErrDuplicateService
		}
	}
	s.ID, s.CreatedAt = r.stamp()
	r.offerings[s.ID] = *s
	return nil
}

func (r *memRepo) ListServices(context.Context) ([]Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Offering{}
	for _, s := range r.offerings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) GetService(_ context.Context, id int64) (*Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.offerings[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &s, nil
}

func (r *memRepo) UpdateService(_ context.Context, s *Offering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	if _, ok := r.offerings[s.ID]; !ok {
		return ErrServiceNotFound
	}
	r.offerings[s.ID] = *s
	return nil
}

func (r *memRepo) DeleteService(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offerings[id]; !ok {
		return ErrServiceNotFound
	}
	delete(r.offerings, id)
	return nil
}

func (r *memRepo) AddLike(_ context.Context, userID, workID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.works[workID]; !ok {
		return ErrWorkNotFound
	}
	k := likeKey{userID, workID}
	if _, ok := r.likes[k]; ok {
		return ErrAlreadyLiked
	}
	_, at := r.stamp()
	r.likes[k] = at
	return nil
}

func (r *memRepo) RemoveLike(_ context.Context, userID, workID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{userID, workID}
	if _, ok := r.likes[k]; !ok {
		return ErrLikeNotFound
	}
	delete(r.likes, k)
	return nil
}

func (r *memRepo) IsLiked(_ context.Context, userID, workID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.likes[likeKey{userID, workID}]
	return ok, nil
}

func (r *memRepo) LikedAmong(_ context.Context, userID int64, workIDs []int64) (map[int64]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range workIDs {
		if _, ok := r.likes[likeKey{userID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *memRepo) LikedWorks(_ context.Context, userID int64) ([]Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type liked struct {
		w  Work
		at time.Time
	}
	var all []liked
	for k, at := range r.likes {
		if k.user == userID {
			all = append(all, liked{r.works[k.work], at})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.After(all[j].at) })
	out := []Work{}
	for _, l := range all {
		out = append(out, l.w)
	}
	return out, nil
}

// fakeHost records uploads and deletions; it rejects files named "broken*".
type fakeHost struct {
	mu       sync.Mutex
	n        int
	stored   map[string]bool
	deleted  []string
	uploaded []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{stored: map[string]bool{}}
}

func (h *fakeHost) Upload(_ context.Context, u imagehost.Upload) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if strings.HasPrefix(u.Filename, "broken") {
		return "", imagehost.ErrUnsupportedImage
	}
	if _, err := io.ReadAll(u.Body); err != nil {
		return "", err
	}
	h.n++
	url := fmt.Sprintf("https://cdn.example.com/%d-%s", h.n, u.Filename)
	h.stored[url] = true
	h.uploaded = append(h.uploaded, url)
	return url, nil
}

func (h *fakeHost) Delete(_ context.Context, url string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, url)
	if !h.stored[url] {
		return false
	}
	delete(h.stored, url)
	return true
}

func (h *fakeHost) live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stored)
}

func (h *fakeHost) wasDeleted(url string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, d := range h.deleted {
		if d == url {
			return true
		}
	}
	return false
}

type outbox struct {
	mu   sync.Mutex
	sent []notification.Notification
	err  error
}

func (o *outbox) Enqueue(_ context.Context, n notification.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, n)
	return nil
}

func (o *outbox) last(t *testing.T) notification.Notification {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent, "no notification queued")
	return o.sent[len(o.sent)-1]
}

type profiles map[int64]*user.User

func (p profiles) GetProfile(_ context.Context, id int64) (*user.User, error) {
	if u, ok := p[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type fixture struct {
	svc    Service
	repo   *memRepo
	host   *fakeHost
	outbox *outbox
	users  profiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newMemRepo(),
		host:   newFakeHost(),
		outbox: &outbox{},
		users:  profiles{},
	}
	notifier := notification.NewService(discardLogger(), f.outbox,
		templates.NewEngine(templates.Config{}, discardLogger()), "no-reply@example.com")
	f.svc = NewService(&Config{
		Repo:      f.repo,
		Images:    f.host,
		Notifier:  notifier,
		Profiles:  f.users,
		Logger:    discardLogger(),
		ContactTo: "studio@example.com",
	})
	return f
}

func image(name string) *imagehost.Upload {
	return &imagehost.Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader("png bytes")}
}

func (f *fixture) category(t *testing.T, title string) *Category {
	t.Helper()
	c, err := f.svc.CreateCategory(context.Background(), title)
	require.NoError(t, err)
	return c
}

func (f *fixture) work(t *testing.T, title string, categoryID *int64, others ...string) *Work {
	t.Helper()
	in := WorkInput{Title: title, Description: "about " + title, CategoryID: categoryID, Image: image(title + ".png")}
	for _, o := range others {
		in.OtherImages = append(in.OtherImages, *image(o))
	}
	w, err := f.svc.CreateWork(context.Background(), in)
	require.NoError(t, err)
	return w
}

func (f *fixture) member(id int64, admin bool) *user.User {
	u := &user.User{ID: id, Email: fmt.Sprintf("user%d@example.com", id), FirstName: "Grace", LastName: "Hopper",
		Status: user.StatusActive, IsAdmin: admin}
	f.users[id] = u
	return u
}

var errDBDown = errors.New("db down")
