package catalog

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
)

func (h *Handler) registerLikeRoutes(api huma.API, g httpx.Guards) {
	huma.Register(api, huma.Operation{
		OperationID:   "like-work",
		Method:        http.MethodPost,
		Path:          "/api/like/{work_id}",
		Summary:       "Like a work",
		Tags:          []string{"Likes"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
		Middlewares:   g.User,
	}, h.LikeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-like",
		Method:      http.MethodGet,
		Path:        "/api/like/{work_id}",
		Summary:     "Report whether the caller likes a work",
		Tags:        []string{"Likes"},
		Security:    bearerAuth,
		Middlewares: g.User,
	}, h.IsLikedHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "unlike-work",
		Method:        http.MethodDelete,
		Path:          "/api/like/{work_id}",
		Summary:       "Remove a like",
		Tags:          []string{"Likes"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
		Middlewares:   g.User,
	}, h.UnlikeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "home",
		Method:      http.MethodGet,
		Path:        "/api/home",
		Summary:     "Newest works grouped by category",
		Tags:        []string{"Portfolio"},
	}, h.HomeHandler)

	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/api/dashboard",
		Summary:     "Profile and liked works of the caller",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
		Middlewares: g.User,
	}, h.DashboardHandler)
}

type LikedResponse struct {
	Body struct {
		Liked bool `json:"liked"`
	}
}

type HomeResponse struct {
	Body struct {
		WorksByCategory map[string][]WorkBody `json:"works_by_category"`
	}
}

type DashboardResponse struct {
	Body struct {
		User       user.UserBody `json:"user"`
		LikedWorks []WorkBody    `json:"liked_works"`
	}
}

func (h *Handler) LikeHandler(ctx context.Context, input *WorkIDPath) (*MessageResponse, error) {
	if err := h.service.Like(ctx, viewerID(ctx), input.WorkID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return message("Work liked"), nil
}

func (h *Handler) IsLikedHandler(ctx context.Context, input *WorkIDPath) (*LikedResponse, error) {
	liked, err := h.service.IsLiked(ctx, viewerID(ctx), input.WorkID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &LikedResponse{}
	resp.Body.Liked = liked
	return resp, nil
}

func (h *Handler) UnlikeHandler(ctx context.Context, input *WorkIDPath) (*struct{}, error) {
	if err := h.service.Unlike(ctx, viewerID(ctx), input.WorkID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return nil, nil
}

func (h *Handler) HomeHandler(ctx context.Context, _ *struct{}) (*HomeResponse, error) {
	grouped, err := h.service.Home(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &HomeResponse{}
	resp.Body.WorksByCategory = make(map[string][]WorkBody, len(grouped))
	for title, works := range grouped {
		bodies := make([]WorkBody, 0, len(works))
		for i := range works {
			bodies = append(bodies, toWorkBody(&works[i], false))
		}
		resp.Body.WorksByCategory[title] = bodies
	}
	return resp, nil
}

func (h *Handler) DashboardHandler(ctx context.Context, _ *struct{}) (*DashboardResponse, error) {
	d, err := h.service.Dashboard(ctx, viewerID(ctx))
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &DashboardResponse{}
	resp.Body.User = user.ToUserBody(d.User)
	resp.Body.LikedWorks = make([]WorkBody, 0, len(d.LikedWorks))
	for i := range d.LikedWorks {
		resp.Body.LikedWorks = append(resp.Body.LikedWorks, toWorkBody(&d.LikedWorks[i], true))
	}
	return resp, nil
}
