package catalog

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

func (h *Handler) registerServiceRoutes(api huma.API, g httpx.Guards) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-service",
		Method:        http.MethodPost,
		Path:          "/api/services",
		Summary:       "Create a service listing from a multipart form",
		Tags:          []string{"Service"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxUploadRequestBytes,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.CreateServiceHandler)

	huma.Register(api, huma.Operation{
		OperationID: "list-services",
		Method:      http.MethodGet,
		Path:        "/api/services",
		Summary:     "List services",
		Tags:        []string{"Service"},
	}, h.ListServicesHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-service",
		Method:      http.MethodGet,
		Path:        "/api/services/{service_id}",
		Summary:     "Get a service",
		Tags:        []string{"Service"},
	}, h.GetServiceHandler)

	huma.Register(api, huma.Operation{
		OperationID:  "update-service",
		Method:       http.MethodPut,
		Path:         "/api/services/{service_id}",
		Summary:      "Update a service listing from a multipart form",
		Tags:         []string{"Service"},
		MaxBodyBytes: maxUploadRequestBytes,
		Security:     bearerAuth,
		Middlewares:  g.Admin,
	}, h.UpdateServiceHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-service",
		Method:        http.MethodDelete,
		Path:          "/api/services/{service_id}",
		Summary:       "Delete a service listing",
		Tags:          []string{"Service"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.DeleteServiceHandler)
}

type ServiceBody struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImgURL      string    `json:"img_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toServiceBody(s *Offering) ServiceBody {
	return ServiceBody{ID: s.ID, Title: s.Title, Description: s.Description, ImgURL: s.ImgURL, CreatedAt: s.CreatedAt}
}

type serviceFields struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

type CreateServiceRequest struct {
	RawBody multipart.Form
}

type UpdateServiceRequest struct {
	ServiceID int64 `path:"service_id"`
	RawBody   multipart.Form
}

type ServiceIDPath struct {
	ServiceID int64 `path:"service_id"`
}

type ServiceResponse struct {
	Body ServiceBody
}

type ServiceListResponse struct {
	Body []ServiceBody
}

func readServiceForm(raw *multipart.Form) (*uploadForm, ServiceInput, error) {
	form := newUploadForm(raw)
	fields := serviceFields{Title: form.value("title"), Description: form.value("description")}
	if err := validation.ValidateStruct(&fields); err != nil {
		return form, ServiceInput{}, err
	}
	image, err := form.file("img_url")
	if err != nil {
		return form, ServiceInput{}, err
	}
	return form, ServiceInput{Title: fields.Title, Description: fields.Description, Image: image}, nil
}

func (h *Handler) CreateServiceHandler(ctx context.Context, input *CreateServiceRequest) (*ServiceResponse, error) {
	form, in, err := readServiceForm(&input.RawBody)
	defer form.Close()
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	s, err := h.service.CreateService(ctx, in)
	if err != nil {
		h.logger.Warn("failed to create service", "title", in.Title, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &ServiceResponse{Body: toServiceBody(s)}, nil
}

func (h *Handler) ListServicesHandler(ctx context.Context, _ *struct{}) (*ServiceListResponse, error) {
	services, err := h.service.ListServices(ctx)
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &ServiceListResponse{Body: make([]ServiceBody, 0, len(services))}
	for i := range services {
		resp.Body = append(resp.Body, toServiceBody(&services[i]))
	}
	return resp, nil
}

func (h *Handler) GetServiceHandler(ctx context.Context, input *ServiceIDPath) (*ServiceResponse, error) {
	s, err := h.service.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &ServiceResponse{Body: toServiceBody(s)}, nil
}

func (h *Handler) UpdateServiceHandler(ctx context.Context, input *UpdateServiceRequest) (*ServiceResponse, error) {
	form, in, err := readServiceForm(&input.RawBody)
	defer form.Close()
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	s, err := h.service.UpdateService(ctx, input.ServiceID, in)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &ServiceResponse{Body: toServiceBody(s)}, nil
}

func (h *Handler) DeleteServiceHandler(ctx context.Context, input *ServiceIDPath) (*struct{}, error) {
	if err := h.service.DeleteService(ctx, input.ServiceID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return nil, nil
}
