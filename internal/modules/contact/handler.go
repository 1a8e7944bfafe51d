package contact

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(api huma.API, g httpx.Guards) {
	huma.Register(api, huma.Operation{
		OperationID: "contact",
		Method:      http.MethodPost,
		Path:        "/api/contact",
		Summary:     "Send a message to the agency",
		Tags:        []string{"Contact"},
		Middlewares: g.Throttle,
	}, h.ContactHandler)
}

type ContactRequest struct {
	Body struct {
		Name    string `json:"name" validate:"required,max=120"`
		Email   string `json:"email" validate:"required,email"`
		Message string `json:"message" validate:"required,max=5000"`
	}
}

type ContactResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *Handler) ContactHandler(ctx context.Context, input *ContactRequest) (*ContactResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	err := h.service.Submit(ctx, Message{Name: input.Body.Name, Email: input.Body.Email, Message: input.Body.Message})
	if err != nil {
		h.logger.Error("contact message not queued", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	resp := &ContactResponse{}
	resp.Body.Message = "Contact message sent successfully!"
	return resp, nil
}
