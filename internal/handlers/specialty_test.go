package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Patient{},
		&models.Specialty{},
		&models.Doctor{},
	))
	return db
}

// doJSON runs one handler against a JSON request and returns the recorder.
func doJSON(t *testing.T, handler echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	require.NoError(t, handler(c))
	return rec
}

func decodeSpecialty(t *testing.T, rec *httptest.ResponseRecorder) (string, models.Specialty) {
	t.Helper()
	var resp struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    models.Specialty `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Message, resp.Data
}

func TestCreateSpecialty(t *testing.T) {
	h := &SpecialtyHandler{DB: setupHandlerDB(t)}

	rec := doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Cardiology","icon":"heart.svg"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	msg, created := decodeSpecialty(t, rec)
	require.Equal(t, "Specialty created successfully", msg)
	require.Equal(t, "Cardiology", created.Title)
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Cardiology"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"icon":"x.svg"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSpecialtyRevivesSoftDeleted(t *testing.T) {
	h := &SpecialtyHandler{DB: setupHandlerDB(t)}

	rec := doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Neurology"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, original := decodeSpecialty(t, rec)

	rec = doJSON(t, h.DeleteSpecialty, http.MethodDelete, "/specialties/"+original.ID, "", map[string]string{"id": original.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// Re-creating the same title brings the soft-deleted row back under its
	// original id.
	rec = doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Neurology","icon":"brain.svg"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, revived := decodeSpecialty(t, rec)
	require.Equal(t, original.ID, revived.ID)
	require.False(t, revived.IsDeleted)
	require.Equal(t, "brain.svg", revived.Icon)
}

func TestGetSpecialtiesExcludesDeleted(t *testing.T) {
	h := &SpecialtyHandler{DB: setupHandlerDB(t)}

	for _, title := range []string{"Cardiology", "Neurology", "Dermatology"} {
		rec := doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"`+title+`"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var neuro models.Specialty
	require.NoError(t, h.DB.Where("title = ?", "Neurology").First(&neuro).Error)
	rec := doJSON(t, h.DeleteSpecialty, http.MethodDelete, "/specialties/"+neuro.ID, "", map[string]string{"id": neuro.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.GetSpecialties, http.MethodGet, "/specialties", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Specialty `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	// Sorted by title.
	require.Equal(t, "Cardiology", resp.Data[0].Title)
	require.Equal(t, "Dermatology", resp.Data[1].Title)
}

func TestGetSpecialty(t *testing.T) {
	h := &SpecialtyHandler{DB: setupHandlerDB(t)}

	rec := doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Cardiology"}`, nil)
	_, created := decodeSpecialty(t, rec)

	rec = doJSON(t, h.GetSpecialty, http.MethodGet, "/specialties/"+created.ID, "", map[string]string{"id": created.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.GetSpecialty, http.MethodGet, "/specialties/nope", "", map[string]string{"id": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSpecialty(t *testing.T) {
	h := &SpecialtyHandler{DB: setupHandlerDB(t)}

	rec := doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Cardiology"}`, nil)
	_, cardio := decodeSpecialty(t, rec)
	rec = doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Neurology"}`, nil)
	_, neuro := decodeSpecialty(t, rec)

	// Renaming onto an existing title conflicts.
	rec = doJSON(t, h.UpdateSpecialty, http.MethodPatch, "/specialties/"+neuro.ID, `{"title":"Cardiology"}`, map[string]string{"id": neuro.ID})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Re-sending its own title is a no-op, not a conflict.
	rec = doJSON(t, h.UpdateSpecialty, http.MethodPatch, "/specialties/"+cardio.ID, `{"title":"Cardiology","icon":"new.svg"}`, map[string]string{"id": cardio.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	_, updated := decodeSpecialty(t, rec)
	require.Equal(t, "new.svg", updated.Icon)

	rec = doJSON(t, h.UpdateSpecialty, http.MethodPatch, "/specialties/nope", `{"title":"X"}`, map[string]string{"id": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSpecialty(t *testing.T) {
	h := &SpecialtyHandler{DB: setupHandlerDB(t)}

	rec := doJSON(t, h.CreateSpecialty, http.MethodPost, "/specialties", `{"title":"Cardiology"}`, nil)
	_, created := decodeSpecialty(t, rec)

	rec = doJSON(t, h.DeleteSpecialty, http.MethodDelete, "/specialties/"+created.ID, "", map[string]string{"id": created.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// Already-deleted rows look absent to delete and get alike.
	rec = doJSON(t, h.DeleteSpecialty, http.MethodDelete, "/specialties/"+created.ID, "", map[string]string{"id": created.ID})
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h.GetSpecialty, http.MethodGet, "/specialties/"+created.ID, "", map[string]string{"id": created.ID})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
