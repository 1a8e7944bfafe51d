package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
)

// Problem is an RFC 9457 problem+json body. Besides the standard members it carries
// the stable business code, an optional context payload and the chi request id.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Errors lists huma's per-location request validation failures.
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`

	Code      string `json:"code,omitempty"`
	Context   any    `json:"context,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (p *Problem) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	if p.Title != "" {
		return p.Title
	}
	return http.StatusText(p.GetStatus())
}

// GetStatus implements huma.StatusError.
func (p *Problem) GetStatus() int {
	if p.Status == 0 {
		return http.StatusInternalServerError
	}
	return p.Status
}

// ContentType implements huma.ContentTypeFilter.
func (p *Problem) ContentType(ct string) string {
	switch ct {
	case "application/json":
		return "application/problem+json"
	case "application/cbor":
		return "application/problem+cbor"
	}
	return ct
}

// DomainProblem is satisfied by domainerr.Error and validation.ValidationError, so modules
// never register their error types here.
type DomainProblem interface {
	ProblemCode() string
	ProblemStatus() int
	ProblemTitle() string
	ProblemDetail() string
	ProblemTypeURI() string
	ProblemContext() any
}

// ToProblem converts err for returning from a huma handler. Status errors pass through,
// domain problems keep their code, anything else becomes an opaque 500.
func ToProblem(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(huma.StatusError); ok {
		return err
	}

	var dp DomainProblem
	if !errors.As(err, &dp) {
		return &Problem{
			Type:      "urn:problem:internal",
			Title:     http.StatusText(http.StatusInternalServerError),
			Status:    http.StatusInternalServerError,
			Detail:    "Something went wrong. Please try again later.",
			Code:      "ErrInternal",
			RequestID: middleware.GetReqID(ctx),
		}
	}

	status := dp.ProblemStatus()
	typeURI := dp.ProblemTypeURI()
	if typeURI == "" {
		typeURI = "urn:problem:" + toKebab(dp.ProblemCode())
	}
	title := dp.ProblemTitle()
	if title == "" {
		title = http.StatusText(status)
	}
	detail := dp.ProblemDetail()
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &Problem{
		Type:      typeURI,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Code:      dp.ProblemCode(),
		Context:   dp.ProblemContext(),
		RequestID: middleware.GetReqID(ctx),
	}
}

// WriteProblem renders err on a huma context. Middlewares use it because they
// short-circuit before an operation handler can return an error.
func WriteProblem(hctx huma.Context, err error) {
	perr := ToProblem(hctx.Context(), err)
	status := http.StatusInternalServerError
	var se huma.StatusError
	if errors.As(perr, &se) {
		status = se.GetStatus()
	}
	hctx.SetHeader("Content-Type", "application/problem+json")
	hctx.SetStatus(status)
	_ = json.NewEncoder(hctx.BodyWriter()).Encode(perr)
}

// UseProblems makes huma's own errors (unparsable bodies, schema violations, oversized
// requests) render as Problem with a code, like domain errors do.
func UseProblems() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		p := &Problem{
			Type:   "urn:problem:" + toKebab(codeForStatus(status)),
			Title:  http.StatusText(status),
			Status: status,
			Detail: msg,
			Code:   codeForStatus(status),
		}
		for _, err := range errs {
			var d *huma.ErrorDetail
			if errors.As(err, &d) {
				p.Errors = append(p.Errors, d)
			} else if err != nil {
				p.Errors = append(p.Errors, &huma.ErrorDetail{Message: err.Error()})
			}
		}
		return p
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return "ErrValidation"
	case status == http.StatusUnauthorized:
		return "ErrUnauthorized"
	case status == http.StatusNotFound:
		return "ErrNotFound"
	case status == http.StatusRequestEntityTooLarge:
		return "ErrRequestTooLarge"
	case status >= 500:
		return "ErrInternal"
	}
	return "ErrRequest"
}

// toKebab turns ErrInvalidOrExpiredOtp into err-invalid-or-expired-otp and USER_NOT_FOUND
// into user-not-found.
func toKebab(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		if r == '_' || r == ' ' || r == '-' {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			prevLower = false
			continue
		}
		if unicode.IsUpper(r) && prevLower {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return b.String()
}
