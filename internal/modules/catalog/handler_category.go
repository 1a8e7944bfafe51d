package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

func (h *Handler) registerCategoryRoutes(api huma.API, g httpx.Guards) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/api/portfolio/categories",
		Summary:       "Create a portfolio category",
		Tags:          []string{"Portfolio"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.CreateCategoryHandler)

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/portfolio/categories",
		Summary:     "List portfolio categories",
		Tags:        []string{"Portfolio"},
	}, h.ListCategoriesHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-category",
		Method:      http.MethodGet,
		Path:        "/api/portfolio/category/{category_id}",
		Summary:     "Get a portfolio category",
		Tags:        []string{"Portfolio"},
	}, h.GetCategoryHandler)

	huma.Register(api, huma.Operation{
		OperationID: "update-category",
		Method:      http.MethodPut,
		Path:        "/api/portfolio/category/{category_id}",
		Summary:     "Rename a portfolio category",
		Tags:        []string{"Portfolio"},
		Security:    bearerAuth,
		Middlewares: g.Admin,
	}, h.UpdateCategoryHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-category",
		Method:        http.MethodDelete,
		Path:          "/api/portfolio/category/{category_id}",
		Summary:       "Delete a portfolio category",
		Tags:          []string{"Portfolio"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.DeleteCategoryHandler)
}

type CategoryBody struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryBody(c *Category) CategoryBody {
	return CategoryBody{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
}

type CategoryInput struct {
	Title string `json:"title" validate:"required,max=120"`
}

type CreateCategoryRequest struct {
	Body CategoryInput
}

type UpdateCategoryRequest struct {
	CategoryID int64 `path:"category_id"`
	Body       CategoryInput
}

type CategoryIDPath struct {
	CategoryID int64 `path:"category_id"`
}

type CategoryResponse struct {
	Body CategoryBody
}

type CategoryListResponse struct {
	Body []CategoryBody
}

func (h *Handler) CreateCategoryHandler(ctx context.Context, input *CreateCategoryRequest) (*CategoryResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	c, err := h.service.CreateCategory(ctx, input.Body.Title)
	if err != nil {
		h.logger.Warn("failed to create category", "title", input.Body.Title, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &CategoryResponse{Body: toCategoryBody(c)}, nil
}

func (h *Handler) ListCategoriesHandler(ctx context.Context, _ *struct{}) (*CategoryListResponse, error) {
	categories, err := h.service.ListCategories(ctx)
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &CategoryListResponse{Body: make([]CategoryBody, 0, len(categories))}
	for i := range categories {
		resp.Body = append(resp.Body, toCategoryBody(&categories[i]))
	}
	return resp, nil
}

func (h *Handler) GetCategoryHandler(ctx context.Context, input *CategoryIDPath) (*CategoryResponse, error) {
	c, err := h.service.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &CategoryResponse{Body: toCategoryBody(c)}, nil
}

func (h *Handler) UpdateCategoryHandler(ctx context.Context, input *UpdateCategoryRequest) (*CategoryResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	c, err := h.service.UpdateCategory(ctx, input.CategoryID, input.Body.Title)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &CategoryResponse{Body: toCategoryBody(c)}, nil
}

func (h *Handler) DeleteCategoryHandler(ctx context.Context, input *CategoryIDPath) (*struct{}, error) {
	if err := h.service.DeleteCategory(ctx, input.CategoryID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return nil, nil
}
