package user

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

const maxAdminPage = 1000

func (h *Handler) registerAdminRoutes(api huma.API, g httpx.Guards) {
	huma.Register(api, huma.Operation{
		OperationID: "admin-list-users",
		Method:      http.MethodGet,
		Path:        "/api/admin",
		Summary:     "List accounts",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: g.Admin,
	}, h.ListUsersHandler)

	huma.Register(api, huma.Operation{
		OperationID: "admin-get-user",
		Method:      http.MethodGet,
		Path:        "/api/admin/{user_id}",
		Summary:     "Get an account",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: g.Admin,
	}, h.GetUserHandler)

	huma.Register(api, huma.Operation{
		OperationID: "admin-update-user",
		Method:      http.MethodPut,
		Path:        "/api/admin/{user_id}",
		Summary:     "Update an account",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: g.Admin,
	}, h.UpdateUserHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "admin-delete-user",
		Method:        http.MethodDelete,
		Path:          "/api/admin/{user_id}",
		Summary:       "Delete an account",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
		Middlewares:   g.Admin,
	}, h.DeleteUserHandler)

	huma.Register(api, huma.Operation{
		OperationID: "admin-toggle-block",
		Method:      http.MethodPut,
		Path:        "/api/admin/block-unblock/{user_id}",
		Summary:     "Block an active account or unblock a blocked one",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: g.Admin,
	}, h.ToggleBlockHandler)

	huma.Register(api, huma.Operation{
		OperationID: "admin-broadcast-email",
		Method:      http.MethodPost,
		Path:        "/api/admin/broadcast-email",
		Summary:     "Email a message to a selection of registered users",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
		Middlewares: g.Admin,
	}, h.BroadcastHandler)
}

type ListUsersRequest struct {
	Skip  int `query:"skip" minimum:"0" default:"0"`
	Limit int `query:"limit" minimum:"0" default:"100"`
}

type ListUsersResponse struct {
	Body struct {
		Users      []UserBody `json:"users"`
		TotalUsers int        `json:"total_users"`
	}
}

type UserIDPath struct {
	UserID int64 `path:"user_id"`
}

type AdminUpdateRequest struct {
	UserID int64 `path:"user_id"`
	Body   struct {
		Email       *string `json:"email,omitempty" validate:"omitempty,email"`
		FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
		LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
		PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
		Password    *string `json:"password,omitempty" validate:"omitempty,max=72"`
	}
}

type BroadcastRequest struct {
	Body struct {
		Subject        string   `json:"subject" validate:"required,max=200"`
		Message        string   `json:"message" validate:"required"`
		SendOption     string   `json:"send_option" validate:"required,oneof=all all_except_admin all_except_selected only_selected"`
		SelectedEmails []string `json:"selected_emails,omitempty" validate:"omitempty,dive,email"`
	}
}

type BroadcastResponse struct {
	Body struct {
		Message    string `json:"message"`
		Recipients int    `json:"recipients"`
	}
}

func (h *Handler) ListUsersHandler(ctx context.Context, input *ListUsersRequest) (*ListUsersResponse, error) {
	page := httpx.ClampPage(input.Skip, input.Limit, 100, maxAdminPage)
	users, total, err := h.service.ListUsers(ctx, page.Skip, page.Limit)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListUsersResponse{}
	resp.Body.Users = make([]UserBody, 0, len(users))
	for i := range users {
		resp.Body.Users = append(resp.Body.Users, ToUserBody(&users[i]))
	}
	resp.Body.TotalUsers = total
	return resp, nil
}

func (h *Handler) GetUserHandler(ctx context.Context, input *UserIDPath) (*UserResponse, error) {
	u, err := h.service.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &UserResponse{Body: ToUserBody(u)}, nil
}

func (h *Handler) UpdateUserHandler(ctx context.Context, input *AdminUpdateRequest) (*UserResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	u, err := h.service.AdminUpdateUser(ctx, input.UserID, AdminChanges{
		ProfileChanges: ProfileChanges{
			Email:       input.Body.Email,
			FirstName:   input.Body.FirstName,
			LastName:    input.Body.LastName,
			PhoneNumber: input.Body.PhoneNumber,
		},
		Password: input.Body.Password,
	})
	if err != nil {
		h.logger.Warn("admin update failed", "user_id", input.UserID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &UserResponse{Body: ToUserBody(u)}, nil
}

func (h *Handler) DeleteUserHandler(ctx context.Context, input *UserIDPath) (*struct{}, error) {
	actor, ok := FromContext(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthorized)
	}
	if err := h.service.DeleteUser(ctx, actor.ID, input.UserID); err != nil {
		h.logger.Warn("admin delete failed", "user_id", input.UserID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return nil, nil
}

func (h *Handler) ToggleBlockHandler(ctx context.Context, input *UserIDPath) (*UserResponse, error) {
	actor, ok := FromContext(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthorized)
	}
	u, err := h.service.ToggleBlock(ctx, actor.ID, input.UserID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &UserResponse{Body: ToUserBody(u)}, nil
}

func (h *Handler) BroadcastHandler(ctx context.Context, input *BroadcastRequest) (*BroadcastResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	n, err := h.service.Broadcast(ctx, BroadcastInput{
		Subject:        input.Body.Subject,
		Message:        input.Body.Message,
		SendOption:     input.Body.SendOption,
		SelectedEmails: input.Body.SelectedEmails,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &BroadcastResponse{}
	resp.Body.Message = "Broadcast queued"
	resp.Body.Recipients = n
	return resp, nil
}
