package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
)

// Uploads carry up to a handful of 10 MB images.
const maxUploadRequestBytes = 64 << 20

// Handler holds the dependencies for the catalog's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

var bearerAuth = []map[string][]string{{"bearer": {}}}

// RegisterRoutes wires every catalog operation.
func (h *Handler) RegisterRoutes(api huma.API, g httpx.Guards) {
	h.registerCategoryRoutes(api, g)
	h.registerWorkRoutes(api, g)
	h.registerServiceRoutes(api, g)
	h.registerLikeRoutes(api, g)
}

// viewerID returns the id of the signed-in caller, or 0 for anonymous requests.
func viewerID(ctx context.Context) int64 {
	if u, ok := user.FromContext(ctx); ok {
		return u.ID
	}
	return 0
}

// --- Shared DTOs ---

type WorkBody struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ImgURL         string    `json:"img_url"`
	OtherImageURLs []string  `json:"other_image_urls"`
	CategoryID     *int64    `json:"category_id"`
	CreatedAt      time.Time `json:"created_at"`
	LikedByUser    bool      `json:"liked_by_user"`
}

func toWorkBody(w *Work, liked bool) WorkBody {
	others := w.OtherImageURLs
	if others == nil {
		others = []string{}
	}
	return WorkBody{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		ImgURL:         w.ImgURL,
		OtherImageURLs: others,
		CategoryID:     w.CategoryID,
		CreatedAt:      w.CreatedAt,
		LikedByUser:    liked,
	}
}

type WorkResponse struct {
	Body WorkBody
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func message(msg string) *MessageResponse {
	resp := &MessageResponse{}
	resp.Body.Message = msg
	return resp
}
