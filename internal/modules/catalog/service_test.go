package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
)

func TestCategoryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "  Branding ")
	assert.Equal(t, "Branding", c.Title)

	_, err := f.svc.CreateCategory(ctx, "Branding")
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	renamed, err := f.svc.UpdateCategory(ctx, c.ID, "Identity")
	require.NoError(t, err)
	assert.Equal(t, "Identity", renamed.Title)

	w := f.work(t, "Logo", &c.ID)
	require.NoError(t, f.svc.DeleteCategory(ctx, c.ID))

	_, err = f.svc.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	view, err := f.svc.GetWork(ctx, 0, w.ID)
	require.NoError(t, err)
	assert.Nil(t, view.CategoryID, "works outlive their category")
}

func TestCreateWorkRequiresImageAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWork(ctx, WorkInput{Title: "No image", Description: "d"})
	assert.ErrorIs(t, err, ErrImageRequired)

	missing := int64(99)
	_, err = f.svc.CreateWork(ctx, WorkInput{Title: "Orphan", Description: "d", CategoryID: &missing, Image: image("a.png")})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Zero(t, f.host.live(), "nothing is uploaded for a rejected work")
}

func TestCreateWorkStoresGallery(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Web")

	w := f.work(t, "Shop", &c.ID, "one.png", "two.png")
	assert.Contains(t, w.ImgURL, "Shop.png")
	assert.Len(t, w.OtherImageURLs, 2)
	assert.Equal(t, 3, f.host.live())
	assert.Equal(t, append([]string{w.ImgURL}, w.OtherImageURLs...), w.Images())
}

func TestCreateWorkCleansUpFailedUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := WorkInput{
		Title: "Gallery", Description: "d", Image: image("main.png"),
		OtherImages: []imagehost.Upload{*image("ok.png"), *image("broken.png")},
	}
	_, err := f.svc.CreateWork(ctx, in)
	assert.ErrorIs(t, err, imagehost.ErrUnsupportedImage)
	assert.Zero(t, f.host.live())
}

func TestCreateWorkDiscardsUploadsWhenStoreFails(t *testing.T) {
	f := newFixture(t)
	f.work(t, "Taken", nil)

	_, err := f.svc.CreateWork(context.Background(), WorkInput{Title: "Taken", Description: "d", Image: image("x.png")})
	assert.ErrorIs(t, err, ErrDuplicateWork)
	assert.Equal(t, 1, f.host.live(), "only the first work's image remains")
}

func TestUpdateWorkReplacesImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.work(t, "Poster", nil, "g1.png")
	oldMain, oldGallery := w.ImgURL, w.OtherImageURLs[0]

	t.Run("text only keeps images", func(t *testing.T) {
		got, err := f.svc.UpdateWork(ctx, w.ID, WorkInput{Title: "Poster v2", Description: "new"})
		require.NoError(t, err)
		assert.Equal(t, oldMain, got.ImgURL)
		assert.Equal(t, []string{oldGallery}, got.OtherImageURLs)
		assert.Empty(t, f.host.deleted)
	})

	t.Run("new main image deletes the old one", func(t *testing.T) {
		got, err := f.svc.UpdateWork(ctx, w.ID, WorkInput{Title: "Poster v3", Description: "new", Image: image("main2.png")})
		require.NoError(t, err)
		assert.NotEqual(t, oldMain, got.ImgURL)
		assert.True(t, f.host.wasDeleted(oldMain))
		assert.False(t, f.host.wasDeleted(oldGallery))
	})

	t.Run("new gallery replaces the whole gallery", func(t *testing.T) {
		got, err := f.svc.UpdateWork(ctx, w.ID, WorkInput{
			Title: "Poster v4", Description: "new",
			OtherImages: []imagehost.Upload{*image("g2.png"), *image("g3.png")},
		})
		require.NoError(t, err)
		assert.Len(t, got.OtherImageURLs, 2)
		assert.True(t, f.host.wasDeleted(oldGallery))
	})

	t.Run("failed store discards fresh uploads", func(t *testing.T) {
		before, err := f.svc.GetWork(ctx, 0, w.ID)
		require.NoError(t, err)
		f.repo.failWrite = errDBDown
		defer func() { f.repo.failWrite = nil }()

		_, err = f.svc.UpdateWork(ctx, w.ID, WorkInput{Title: "Poster v5", Description: "new", Image: image("main3.png")})
		assert.ErrorIs(t, err, errDBDown)
		assert.False(t, f.host.wasDeleted(before.ImgURL), "current image survives a failed update")
		assert.Equal(t, 1+len(before.OtherImageURLs), f.host.live())
	})
}

func TestDeleteWorkRemovesImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.work(t, "Mural", nil, "side.png")

	require.NoError(t, f.svc.DeleteWork(ctx, w.ID))
	assert.Zero(t, f.host.live())

	err := f.svc.DeleteWork(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWorkNotFound)
}

func TestListWorksPersonalisesLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	web := f.category(t, "Web")
	a := f.work(t, "A", &web.ID)
	b := f.work(t, "B", nil)
	viewer := f.member(7, false)
	require.NoError(t, f.svc.Like(ctx, viewer.ID, a.ID))

	views, err := f.svc.ListWorks(ctx, viewer.ID, WorkFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, b.ID, views[0].ID, "newest first")
	assert.False(t, views[0].LikedByUser)
	assert.True(t, views[1].LikedByUser)

	anon, err := f.svc.ListWorks(ctx, 0, WorkFilter{Limit: 10})
	require.NoError(t, err)
	for _, v := range anon {
		assert.False(t, v.LikedByUser)
	}

	filtered, err := f.svc.ListWorks(ctx, 0, WorkFilter{Limit: 10, CategoryID: &web.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID, filtered[0].ID)
}

func TestLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.work(t, "Liked", nil)

	assert.ErrorIs(t, f.svc.Like(ctx, 1, 404), ErrWorkNotFound)
	require.NoError(t, f.svc.Like(ctx, 1, w.ID))
	assert.ErrorIs(t, f.svc.Like(ctx, 1, w.ID), ErrAlreadyLiked)

	liked, err := f.svc.IsLiked(ctx, 1, w.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, f.svc.Unlike(ctx, 1, w.ID))
	assert.ErrorIs(t, f.svc.Unlike(ctx, 1, w.ID), ErrLikeNotFound)

	_, err = f.svc.IsLiked(ctx, 1, 404)
	assert.ErrorIs(t, err, ErrWorkNotFound)
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Home(ctx)
	assert.ErrorIs(t, err, ErrNoCategories)

	web := f.category(t, "Web")
	f.category(t, "Print")
	var newest []int64
	for i := range 6 {
		w := f.work(t, "Site "+string(rune('A'+i)), &web.ID)
		newest = append([]int64{w.ID}, newest...)
	}
	f.work(t, "Uncategorised", nil)

	home, err := f.svc.Home(ctx)
	require.NoError(t, err)
	require.Len(t, home, 2)
	assert.Empty(t, home["Print"])
	require.Len(t, home["Web"], 4)
	for i, w := range home["Web"] {
		assert.Equal(t, newest[i], w.ID)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.member(3, false)
	first := f.work(t, "First", nil)
	second := f.work(t, "Second", nil)
	require.NoError(t, f.svc.Like(ctx, u.ID, first.ID))
	require.NoError(t, f.svc.Like(ctx, u.ID, second.ID))

	d, err := f.svc.Dashboard(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, d.User.Email)
	require.Len(t, d.LikedWorks, 2)
	assert.Equal(t, second.ID, d.LikedWorks[0].ID, "most recent like first")

	_, err = f.svc.Dashboard(ctx, 999)
	assert.Error(t, err)
}

func TestRequestOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.work(t, "Brochure", nil)
	customer := f.member(5, false)

	require.NoError(t, f.svc.RequestOrder(ctx, customer, w.ID, "Can you do 500 copies?"))
	n := f.outbox.last(t)
	assert.Equal(t, []string{"studio@example.com"}, n.To)
	assert.Contains(t, n.Subject, "Brochure")
	assert.Contains(t, n.TextBody, "Grace Hopper <user5@example.com>")
	assert.Contains(t, n.TextBody, "500 copies")

	assert.ErrorIs(t, f.svc.RequestOrder(ctx, customer, 404, ""), ErrWorkNotFound)

	f.outbox.err = errDBDown
	err := f.svc.RequestOrder(ctx, customer, w.ID, "again")
	assert.ErrorIs(t, err, domainerr.ErrProviderUnavailable)
}

func TestServiceOfferings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateService(ctx, ServiceInput{Title: "SEO", Description: "d"})
	assert.ErrorIs(t, err, ErrImageRequired)

	s, err := f.svc.CreateService(ctx, ServiceInput{Title: "SEO", Description: "Search", Image: image("seo.png")})
	require.NoError(t, err)
	_, err = f.svc.CreateService(ctx, ServiceInput{Title: "SEO", Description: "again", Image: image("seo2.png")})
	assert.ErrorIs(t, err, ErrDuplicateService)
	assert.Equal(t, 1, f.host.live())

	updated, err := f.svc.UpdateService(ctx, s.ID, ServiceInput{Title: "SEO+", Description: "More", Image: image("seo3.png")})
	require.NoError(t, err)
	assert.True(t, f.host.wasDeleted(s.ImgURL))
	assert.Equal(t, "SEO+", updated.Title)

	list, err := f.svc.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteService(ctx, s.ID))
	assert.Zero(t, f.host.live())
	_, err = f.svc.GetService(ctx, s.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
