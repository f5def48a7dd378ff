package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/httpx"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/search"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/util"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

type DoctorHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

func (h *DoctorHandler) indexDoctor(c echo.Context, doctor models.Doctor) {
	if h.ES == nil {
		return
	}
	if err := search.IndexDoctor(c.Request().Context(), h.ES, h.Index, doctor); err != nil {
		c.Logger().Errorf("doctor index error: %v", err)
	}
}

// checkDoctorUniqueness reports a conflict when another non-deleted doctor
// holds the same email or registration number. excludeID skips the record
// being updated.
func (h *DoctorHandler) checkDoctorUniqueness(email, registrationNumber, excludeID string) error {
	type check struct {
		column string
		value  string
		field  string
	}
	checks := []check{
		{"email", email, "email"},
		{"registration_number", registrationNumber, "registrationNumber"},
	}
	for _, chk := range checks {
		if chk.value == "" {
			continue
		}
		q := h.DB.Model(&models.Doctor{}).
			Where(chk.column+" = ? AND is_deleted = ?", chk.value, false)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "Failed to check doctor uniqueness")
		}
		if count > 0 {
			return apperrors.Newf(apperrors.CodeConflict, "Doctor with this %s already exists", chk.field)
		}
	}
	return nil
}

func (h *DoctorHandler) CreateDoctor(c echo.Context) error {
	var req struct {
		Name               string  `json:"name"`
		Email              string  `json:"email"`
		RegistrationNumber string  `json:"registrationNumber"`
		Experience         int     `json:"experience"`
		SpecialtyID        *string `json:"specialtyId"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}
	if req.Name == "" || req.Email == "" || req.RegistrationNumber == "" {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "name, email and registrationNumber are required"))
	}

	if err := h.checkDoctorUniqueness(req.Email, req.RegistrationNumber, ""); err != nil {
		return httpx.SendError(c, err)
	}

	doctor := models.Doctor{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Email:              req.Email,
		RegistrationNumber: req.RegistrationNumber,
		Experience:         req.Experience,
		SpecialtyID:        req.SpecialtyID,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeConflict, "Doctor with this email already exists"))
	}

	h.indexDoctor(c, doctor)
	return httpx.Send(c, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *DoctorHandler) GetDoctors(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Doctor{}).Where("is_deleted = ?", false)
	if specialty := c.QueryParam("specialtyId"); specialty != "" {
		q = q.Where("specialty_id = ?", specialty)
	}
	if term := c.QueryParam("searchTerm"); term != "" {
		q = q.Where("name LIKE ?", "%"+term+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load doctors"))
	}

	var items []models.Doctor
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load doctors"))
	}

	meta := httpx.Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
	return httpx.SendMeta(c, http.StatusOK, "Doctors retrieved successfully", meta, items)
}

func (h *DoctorHandler) GetDoctor(c echo.Context) error {
	var doctor models.Doctor
	err := h.DB.Where("id = ? AND is_deleted = ?", c.Param("id"), false).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.SendError(c, apperrors.New(apperrors.CodeNotFound, "Doctor not found"))
		}
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load doctor"))
	}
	return httpx.Send(c, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) UpdateDoctor(c echo.Context) error {
	var req struct {
		Name               *string `json:"name"`
		Email              *string `json:"email"`
		RegistrationNumber *string `json:"registrationNumber"`
		Experience         *int    `json:"experience"`
		SpecialtyID        *string `json:"specialtyId"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}

	var doctor models.Doctor
	err := h.DB.Where("id = ? AND is_deleted = ?", c.Param("id"), false).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.SendError(c, apperrors.New(apperrors.CodeNotFound, "Doctor not found"))
		}
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to load doctor"))
	}

	email, regNo := "", ""
	if req.Email != nil && *req.Email != doctor.Email {
		email = *req.Email
	}
	if req.RegistrationNumber != nil && *req.RegistrationNumber != doctor.RegistrationNumber {
		regNo = *req.RegistrationNumber
	}
	if email != "" || regNo != "" {
		if err := h.checkDoctorUniqueness(email, regNo, doctor.ID); err != nil {
			return httpx.SendError(c, err)
		}
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if email != "" {
		doctor.Email = email
	}
	if regNo != "" {
		doctor.RegistrationNumber = regNo
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.SpecialtyID != nil {
		doctor.SpecialtyID = req.SpecialtyID
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to update doctor"))
	}

	h.indexDoctor(c, doctor)
	return httpx.Send(c, http.StatusOK, "Doctor updated successfully", doctor)
}

func (h *DoctorHandler) DeleteDoctor(c echo.Context) error {
	var doctor models.Doctor
	err := h.DB.Where("id = ? AND is_deleted = ?", c.Param("id"), false).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.SendError(c, apperrors.New(apperrors.CodeNotFound, "Doctor not found"))
		}
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to delete doctor"))
	}

	now := time.Now()
	doctor.IsDeleted = true
	doctor.DeletedAt = &now
	if err := h.DB.Save(&doctor).Error; err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to delete doctor"))
	}

	if h.ES != nil {
		if err := search.RemoveDoctor(c.Request().Context(), h.ES, h.Index, doctor.ID); err != nil {
			c.Logger().Errorf("doctor index remove error: %v", err)
		}
	}
	return httpx.Send(c, http.StatusOK, "Doctor deleted successfully", doctor)
}

func (h *DoctorHandler) SearchDoctors(c echo.Context) error {
	if h.ES == nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeInternal, "Search is not available"))
	}

	q := c.QueryParam("q")
	if q == "" {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "q is required"))
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, doctors, err := search.SearchDoctors(c.Request().Context(), h.ES, h.Index, q, from, limit)
	if err != nil {
		return httpx.SendError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Search failed"))
	}

	meta := httpx.Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
	return httpx.SendMeta(c, http.StatusOK, "Doctors retrieved successfully", meta, doctors)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
