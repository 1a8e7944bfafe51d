package catalog

import (
	"net/http"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
)

var (
	ErrCategoryNotFound = domainerr.New("ErrCategoryNotFound", http.StatusNotFound,
		"category not found", "urn:problem:catalog/err-category-not-found")

	ErrWorkNotFound = domainerr.New("ErrWorkNotFound", http.StatusNotFound,
		"work not found", "urn:problem:catalog/err-work-not-found")

	ErrServiceNotFound = domainerr.New("ErrServiceNotFound", http.StatusNotFound,
		"service not found", "urn:problem:catalog/err-service-not-found")

	ErrNoCategories = domainerr.New("ErrNoCategories", http.StatusNotFound,
		"no categories found", "urn:problem:catalog/err-no-categories")

	// Titles are unique per kind.
	ErrDuplicateCategory = domainerr.New("ErrDuplicateCategory", http.StatusConflict,
		"category with this title already exists", "urn:problem:catalog/err-duplicate-category")

	ErrDuplicateWork = domainerr.New("ErrDuplicateWork", http.StatusConflict,
		"work with this title already exists", "urn:problem:catalog/err-duplicate-work")

	ErrDuplicateService = domainerr.New("ErrDuplicateService", http.StatusConflict,
		"service with this title already exists", "urn:problem:catalog/err-duplicate-service")

	// Likes
	ErrAlreadyLiked = domainerr.New("ErrAlreadyLiked", http.StatusBadRequest,
		"work already liked", "urn:problem:catalog/err-already-liked")

	ErrLikeNotFound = domainerr.New("ErrLikeNotFound", http.StatusNotFound,
		"like not found", "urn:problem:catalog/err-like-not-found")

	ErrImageRequired = domainerr.New("ErrImageRequired", http.StatusBadRequest,
		"an image file is required", "urn:problem:catalog/err-image-required")
)
