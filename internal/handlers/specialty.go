package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/httpx"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

type SpecialtyHandler struct {
	DB *gorm.DB
}

// CreateSpecialty inserts a specialty. A title collision with a soft-deleted
// row revives that row instead of erroring, keeping its original id.
func (h *SpecialtyHandler) CreateSpecialty(c echo.Context) error {
	var req struct {
		Title string `json:"title"`
		Icon  string `json:"icon"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}
	if req.Title == "" {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "title is required"))
	}

	var existing models.Specialty
	err := h.DB.Where("title = ?", req.Title).First(&existing).Error
	if err == nil {
		if !existing.IsDeleted {
			return httpx.SendError(c, apperrors.New(apperrors.CodeConflict, "Specialty with this title already exists"))
		}
		existing.IsDeleted = false
		existing.DeletedAt = nil
		if req.Icon != "" {
			existing.Icon = req.Icon
		}
		if err := h.DB.Save(&existing).Error; err != nil {
			return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to create specialty"))
		}
		return httpx.Send(c, http.StatusCreated, "Specialty created successfully", existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to create specialty"))
	}

	specialty := models.Specialty{
		ID:    uuid.NewString(),
		Title: req.Title,
		Icon:  req.Icon,
	}
	if err := h.DB.Create(&specialty).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeConflict, "Specialty with this title already exists"))
	}
	return httpx.Send(c, http.StatusCreated, "Specialty created successfully", specialty)
}

func (h *SpecialtyHandler) GetSpecialties(c echo.Context) error {
	var items []models.Specialty
	if err := h.DB.Where("is_deleted = ?", false).Order("title ASC").Find(&items).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load specialties"))
	}
	return httpx.Send(c, http.StatusOK, "Specialties retrieved successfully", items)
}

func (h *SpecialtyHandler) GetSpecialty(c echo.Context) error {
	var specialty models.Specialty
	err := h.DB.Where("id = ? AND is_deleted = ?", c.Param("id"), false).First(&specialty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.SendError(c, apperrors.New(apperrors.CodeNotFound, "Specialty not found"))
		}
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load specialty"))
	}
	return httpx.Send(c, http.StatusOK, "Specialty retrieved successfully", specialty)
}

func (h *SpecialtyHandler) UpdateSpecialty(c echo.Context) error {
	var req struct {
		Title *string `json:"title"`
		Icon  *string `json:"icon"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}

	var specialty models.Specialty
	err := h.DB.Where("id = ? AND is_deleted = ?", c.Param("id"), false).First(&specialty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.SendError(c, apperrors.New(apperrors.CodeNotFound, "Specialty not found"))
		}
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load specialty"))
	}

	if req.Title != nil && *req.Title != specialty.Title {
		var count int64
		if err := h.DB.Model(&models.Specialty{}).
			Where("title = ? AND id <> ?", *req.Title, specialty.ID).
			Count(&count).Error; err != nil {
			return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to update specialty"))
		}
		if count > 0 {
			return httpx.SendError(c, apperrors.New(apperrors.CodeConflict, "Specialty with this title already exists"))
		}
		specialty.Title = *req.Title
	}
	if req.Icon != nil {
		specialty.Icon = *req.Icon
	}

	if err := h.DB.Save(&specialty).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to update specialty"))
	}
	return httpx.Send(c, http.StatusOK, "Specialty updated successfully", specialty)
}

func (h *SpecialtyHandler) DeleteSpecialty(c echo.Context) error {
	var specialty models.Specialty
	err := h.DB.Where("id = ? AND is_deleted = ?", c.Param("id"), false).First(&specialty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.SendError(c, apperrors.New(apperrors.CodeNotFound, "Specialty not found"))
		}
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to delete specialty"))
	}

	now := time.Now()
	specialty.IsDeleted = true
	specialty.DeletedAt = &now
	if err := h.DB.Save(&specialty).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to delete specialty"))
	}
	return httpx.Send(c, http.StatusOK, "Specialty deleted successfully", specialty)
}
