package catalog

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

const maxWorksPage = 100

func (h *Handler) registerWorkRoutes(api huma.API, g httpx.Guards) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-work",
		Method:        http.MethodPost,
		Path:          "/api/portfolio",
		Summary:       "Create a portfolio work from a multipart form",
		Tags:          []string{"Portfolio"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxUploadRequestBytes,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.CreateWorkHandler)

	huma.Register(api, huma.Operation{
		OperationID: "list-works",
		Method:      http.MethodGet,
		Path:        "/api/portfolio",
		Summary:     "List portfolio works, newest first",
		Tags:        []string{"Portfolio"},
		Middlewares: g.Optional,
	}, h.ListWorksHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-work",
		Method:      http.MethodGet,
		Path:        "/api/portfolio/{work_id}",
		Summary:     "Get a portfolio work",
		Tags:        []string{"Portfolio"},
		Middlewares: g.Optional,
	}, h.GetWorkHandler)

	huma.Register(api, huma.Operation{
		OperationID:  "update-work",
		Method:       http.MethodPut,
		Path:         "/api/portfolio/{work_id}",
		Summary:      "Update a portfolio work from a multipart form",
		Tags:         []string{"Portfolio"},
		MaxBodyBytes: maxUploadRequestBytes,
		Security:     bearerAuth,
		Middlewares:  g.Admin,
	}, h.UpdateWorkHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-work",
		Method:        http.MethodDelete,
		Path:          "/api/portfolio/{work_id}",
		Summary:       "Delete a portfolio work and its images",
		Tags:          []string{"Portfolio"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.DeleteWorkHandler)

	huma.Register(api, huma.Operation{
		OperationID: "order-work",
		Method:      http.MethodPost,
		Path:        "/api/portfolio/{work_id}/order",
		Summary:     "Ask the agency for a quote on a work",
		Tags:        []string{"Portfolio"},
		Security:    bearerAuth,
		Middlewares: g.User,
	}, h.OrderWorkHandler)
}

// workFields are the text parts of the work form.
type workFields struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

type CreateWorkRequest struct {
	RawBody multipart.Form
}

type UpdateWorkRequest struct {
	WorkID  int64 `path:"work_id"`
	RawBody multipart.Form
}

type ListWorksRequest struct {
	Skip       int   `query:"skip" minimum:"0" default:"0"`
	Limit      int   `query:"limit" minimum:"0" default:"20"`
	CategoryID int64 `query:"category_id" doc:"Only works of this category"`
}

type WorkIDPath struct {
	WorkID int64 `path:"work_id"`
}

type OrderWorkRequest struct {
	WorkID int64 `path:"work_id"`
	Body   struct {
		Message string `json:"message,omitempty" validate:"max=2000"`
	}
}

type WorkListResponse struct {
	Body []WorkBody
}

// readWorkForm opens the uploads of a work form. The caller closes the returned form.
func readWorkForm(raw *multipart.Form) (*uploadForm, WorkInput, error) {
	form := newUploadForm(raw)
	fields := workFields{Title: form.value("title"), Description: form.value("description")}
	if err := validation.ValidateStruct(&fields); err != nil {
		return form, WorkInput{}, err
	}
	categoryID, err := form.categoryID()
	if err != nil {
		return form, WorkInput{}, err
	}
	image, err := form.file("img_url")
	if err != nil {
		return form, WorkInput{}, err
	}
	others, err := form.files("other_images")
	if err != nil {
		return form, WorkInput{}, err
	}
	return form, WorkInput{
		Title:       fields.Title,
		Description: fields.Description,
		CategoryID:  categoryID,
		Image:       image,
		OtherImages: others,
	}, nil
}

func (h *Handler) CreateWorkHandler(ctx context.Context, input *CreateWorkRequest) (*WorkResponse, error) {
	form, in, err := readWorkForm(&input.RawBody)
	defer form.Close()
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	w, err := h.service.CreateWork(ctx, in)
	if err != nil {
		h.logger.Warn("failed to create work", "title", in.Title, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &WorkResponse{Body: toWorkBody(w, false)}, nil
}

func (h *Handler) ListWorksHandler(ctx context.Context, input *ListWorksRequest) (*WorkListResponse, error) {
	page := httpx.ClampPage(input.Skip, input.Limit, 20, maxWorksPage)
	f := WorkFilter{Skip: page.Skip, Limit: page.Limit}
	if input.CategoryID > 0 {
		f.CategoryID = &input.CategoryID
	}

	views, err := h.service.ListWorks(ctx, viewerID(ctx), f)
	if err != nil {
		h.logger.Error("failed to list works", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &WorkListResponse{Body: make([]WorkBody, 0, len(views))}
	for i := range views {
		resp.Body = append(resp.Body, toWorkBody(&views[i].Work, views[i].LikedByUser))
	}
	return resp, nil
}

func (h *Handler) GetWorkHandler(ctx context.Context, input *WorkIDPath) (*WorkResponse, error) {
	view, err := h.service.GetWork(ctx, viewerID(ctx), input.WorkID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &WorkResponse{Body: toWorkBody(&view.Work, view.LikedByUser)}, nil
}

func (h *Handler) UpdateWorkHandler(ctx context.Context, input *UpdateWorkRequest) (*WorkResponse, error) {
	form, in, err := readWorkForm(&input.RawBody)
	defer form.Close()
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	w, err := h.service.UpdateWork(ctx, input.WorkID, in)
	if err != nil {
		h.logger.Warn("failed to update work", "work_id", input.WorkID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &WorkResponse{Body: toWorkBody(w, false)}, nil
}

func (h *Handler) DeleteWorkHandler(ctx context.Context, input *WorkIDPath) (*struct{}, error) {
	if err := h.service.DeleteWork(ctx, input.WorkID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return nil, nil
}

func (h *Handler) OrderWorkHandler(ctx context.Context, input *OrderWorkRequest) (*MessageResponse, error) {
	customer, ok := user.FromContext(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, user.ErrUnauthorized)
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	if err := h.service.RequestOrder(ctx, customer, input.WorkID, input.Body.Message); err != nil {
		h.logger.Warn("order request failed", "work_id", input.WorkID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return message("Order request sent"), nil
}
