package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/findosh/showroom/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleBody(brand, model string, extra map[string]any) map[string]any {
	body := map[string]any{
		"brand":        brand,
		"model":        model,
		"year":         2020,
		"price":        "59900.00",
		"mileage":      42000,
		"fuel":         "Flex",
		"transmission": "Manual",
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func (s *testServer) createVehicle(t *testing.T, body map[string]any) models.Vehicle {
	t.Helper()
	rec := s.doJSON(t, http.MethodPost, "/api/vehicles", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Vehicle](t, rec)
}

func TestCreateVehicle_Validation(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]map[string]any{
		"missing brand":        vehicleBody("", "Argo", nil),
		"zero price":           vehicleBody("Fiat", "Argo", map[string]any{"price": 0}),
		"zero year":            vehicleBody("Fiat", "Argo", map[string]any{"year": 0}),
		"missing mileage":      vehicleBody("Fiat", "Argo", map[string]any{"mileage": nil}),
		"blank transmission":   vehicleBody("Fiat", "Argo", map[string]any{"transmission": "  "}),
		"unknown condition":    vehicleBody("Fiat", "Argo", map[string]any{"condition": "vintage"}),
		"negative mileage":     vehicleBody("Fiat", "Argo", map[string]any{"mileage": -1}),
		"wrong type for price": vehicleBody("Fiat", "Argo", map[string]any{"price": true}),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.doJSON(t, http.MethodPost, "/api/vehicles", body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateVehicle(t *testing.T) {
	s := newTestServer(t)

	v := s.createVehicle(t, vehicleBody("Honda", "Civic", map[string]any{
		"version":   "EXL",
		"mileage":   0,
		"condition": "new",
		"optionals": []string{"Airbag", "ABS", "ABS", " "},
	}))

	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.True(t, decimal.RequireFromString("59900").Equal(v.Price))
	assert.Equal(t, 0, v.Mileage)
	require.NotNil(t, v.YearModel)
	assert.Equal(t, 2020, *v.YearModel, "year model defaults to year")
	assert.Equal(t, models.ConditionNew, v.Condition)
	require.NotNil(t, v.Version)
	assert.Equal(t, "EXL", *v.Version)
	assert.Equal(t, []string{"Airbag", "ABS"}, v.OptionalNames())

	rec := s.do(t, http.MethodGet, "/api/vehicles/"+v.ID.String(), nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Vehicle](t, rec)
	assert.Equal(t, []string{"ABS", "Airbag"}, got.OptionalNames(), "optionals come back sorted by name")
	assert.Empty(t, got.Images)
}

func TestGetVehicle_NotFound(t *testing.T) {
	s := newTestServer(t)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		rec := s.do(t, http.MethodGet, "/api/vehicles/"+id, nil, "", false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"vehicle not found"}`, rec.Body.String())
	}
}

func TestListVehicles_Visibility(t *testing.T) {
	s := newTestServer(t)

	available := s.createVehicle(t, vehicleBody("Fiat", "Argo", nil))
	sold := s.createVehicle(t, vehicleBody("Fiat", "Toro", map[string]any{"sold": true}))

	rec := s.do(t, http.MethodGet, "/api/vehicles?brand=Fiat", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	public := decode[[]models.Vehicle](t, rec)
	require.Len(t, public, 1)
	assert.Equal(t, available.ID, public[0].ID)

	rec = s.do(t, http.MethodGet, "/api/vehicles?brand=Fiat", nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Vehicle](t, rec), 2)

	// Direct lookups include sold vehicles.
	rec = s.do(t, http.MethodGet, "/api/vehicles/"+sold.ID.String(), nil, "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/vehicles/brands", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Fiat"}, decode[[]string](t, rec))
}

func TestListVehicles_FiltersAndMalformedValues(t *testing.T) {
	s := newTestServer(t)

	s.createVehicle(t, vehicleBody("Honda", "Civic", map[string]any{"price": "95000", "featured": true}))
	s.createVehicle(t, vehicleBody("Honda", "Fit", map[string]any{"price": "45000"}))
	s.createVehicle(t, vehicleBody("VW", "Gol", map[string]any{"price": "30000"}))

	rec := s.do(t, http.MethodGet, "/api/vehicles?search=CIV", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.Vehicle](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "Civic", found[0].Model)

	rec = s.do(t, http.MethodGet, "/api/vehicles?minPrice=40000&maxPrice=abc&brand=", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Vehicle](t, rec), 2, "malformed and empty filters are ignored")

	rec = s.do(t, http.MethodGet, "/api/vehicles?limit=1", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	limited := decode[[]models.Vehicle](t, rec)
	require.Len(t, limited, 1)
	assert.True(t, limited[0].Featured, "featured vehicles come first")
}

func TestUpdateVehicle(t *testing.T) {
	s := newTestServer(t)

	v := s.createVehicle(t, vehicleBody("Honda", "Civic", map[string]any{
		"version":   "EXL",
		"optionals": []string{"ABS", "Airbag"},
	}))
	path := "/api/vehicles/" + v.ID.String()

	rec := s.doJSON(t, http.MethodPut, path, map[string]any{"price": 54900.5, "featured": true}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Vehicle](t, rec)
	assert.True(t, decimal.RequireFromString("54900.5").Equal(updated.Price))
	assert.True(t, updated.Featured)
	assert.Equal(t, "Civic", updated.Model)
	require.NotNil(t, updated.Version)
	assert.Equal(t, []string{"ABS", "Airbag"}, updated.OptionalNames(), "optionals kept when not sent")

	rec = s.doJSON(t, http.MethodPut, path, map[string]any{"version": nil, "optionals": []string{"Teto solar"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode[models.Vehicle](t, rec)
	assert.Nil(t, updated.Version, "null clears a nullable field")
	assert.Equal(t, []string{"Teto solar"}, updated.OptionalNames())

	rec = s.doJSON(t, http.MethodPut, path, map[string]any{"brand": ""}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doJSON(t, http.MethodPut, "/api/vehicles/"+uuid.NewString(), map[string]any{"price": 1}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehicleImages(t *testing.T) {
	s := newTestServer(t)

	v := s.createVehicle(t, vehicleBody("Fiat", "Argo", nil))
	path := "/api/vehicles/" + v.ID.String() + "/images"

	body, contentType := multipartBody(t, nil, "images", pngData, pngData)
	rec := s.do(t, http.MethodPost, path, body, contentType, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[map[string][]models.VehicleImage](t, rec)["images"]
	require.Len(t, first, 2)
	assert.Equal(t, 0, first[0].Order)
	assert.Equal(t, 1, first[1].Order)
	for _, img := range first {
		assert.True(t, strings.HasPrefix(img.URL, "/uploads/vehicles/"), img.URL)
		assert.True(t, s.fileExists(t, img.URL))
	}

	body, contentType = multipartBody(t, nil, "images", pngData)
	rec = s.do(t, http.MethodPost, path, body, contentType, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[map[string][]models.VehicleImage](t, rec)["images"]
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].Order, "new uploads go after existing images")

	// Uploaded files are served back.
	served := s.do(t, http.MethodGet, first[0].URL, nil, "", false)
	require.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, pngData, served.Body.Bytes())

	rec = s.do(t, http.MethodDelete, path+"/"+first[0].ID.String(), nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.fileExists(t, first[0].URL))

	rec = s.do(t, http.MethodDelete, path+"/"+first[0].ID.String(), nil, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/vehicles/"+v.ID.String(), nil, "", false)
	got := decode[models.Vehicle](t, rec)
	require.Len(t, got.Images, 2)
	assert.Equal(t, first[1].ID, got.Images[0].ID)
	assert.Equal(t, second[0].ID, got.Images[1].ID)

	// Deleting the vehicle removes the remaining files.
	rec = s.do(t, http.MethodDelete, "/api/vehicles/"+v.ID.String(), nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.fileExists(t, first[1].URL))
	assert.False(t, s.fileExists(t, second[0].URL))

	rec = s.do(t, http.MethodDelete, "/api/vehicles/"+v.ID.String(), nil, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehicleImages_Rejected(t *testing.T) {
	s := newTestServer(t)
	v := s.createVehicle(t, vehicleBody("Fiat", "Argo", nil))
	path := "/api/vehicles/" + v.ID.String() + "/images"

	body, contentType := multipartBody(t, nil, "images", []byte("just some text, not an image"))
	rec := s.do(t, http.MethodPost, path, body, contentType, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = multipartBody(t, map[string]string{"note": "no files"}, "images")
	rec = s.do(t, http.MethodPost, path, body, contentType, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = multipartBody(t, nil, "images", pngData)
	rec = s.do(t, http.MethodPost, "/api/vehicles/"+uuid.NewString()+"/images", body, contentType, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehicleStats(t *testing.T) {
	s := newTestServer(t)

	s.createVehicle(t, vehicleBody("Fiat", "Argo", map[string]any{"featured": true}))
	s.createVehicle(t, vehicleBody("Fiat", "Toro", map[string]any{"sold": true, "featured": true}))

	rec := s.do(t, http.MethodGet, "/api/vehicles/stats", nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":2,"available":1,"sold":1,"featured":1}`, rec.Body.String())
}

func TestImportTemplateRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/vehicles/import/template", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	template := rec.Body.Bytes()

	body, contentType := multipartCSV(t, template)
	rec = s.do(t, http.MethodPost, "/api/vehicles/import", body, contentType, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":1,"errors":[]}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/vehicles?search=corolla", nil, "", false)
	vehicles := decode[[]models.Vehicle](t, rec)
	require.Len(t, vehicles, 1)
	assert.True(t, decimal.RequireFromString("119900").Equal(vehicles[0].Price))
	assert.Len(t, vehicles[0].Optionals, 3)
}

func TestImportVehicles_RawBodyAndErrors(t *testing.T) {
	s := newTestServer(t)

	csv := "brand,model,year,price\nFiat,Uno,2010,\"15.000,00\"\nFord,,2012,20000\n"
	rec := s.do(t, http.MethodPost, "/api/vehicles/import", strings.NewReader(csv), "text/csv", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, result["imported"])
	assert.Len(t, result["errors"], 1)

	rec = s.do(t, http.MethodPost, "/api/vehicles/import", strings.NewReader(""), "text/csv", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/vehicles/import", strings.NewReader("foo,bar,baz\n1,2,3\n"), "text/csv", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/vehicles/import", strings.NewReader("brand,model,year,price\nFord,,2012,20000\n"), "text/csv", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["errors"], 1)
}

func multipartCSV(t *testing.T, data []byte) (io.Reader, string) {
	t.Helper()
	body, contentType := multipartBody(t, nil, "file", data)
	return bytes.NewReader(body.Bytes()), contentType
}

func TestVehicleJSONShape(t *testing.T) {
	s := newTestServer(t)
	v := s.createVehicle(t, vehicleBody("Fiat", "Argo", nil))

	rec := s.do(t, http.MethodGet, "/api/vehicles/"+v.ID.String(), nil, "", false)
	for _, key := range []string{"yearModel", "bodyType", "createdAt", "updatedAt", "images", "optionals"} {
		assert.Contains(t, rec.Body.String(), fmt.Sprintf("%q", key))
	}
}
