package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handler "kiranakart/internal/vendorHandler"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func vendorToken(mobile, businessName string) *jwt.Token {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"vendor_mobile": mobile,
		"business_name": businessName,
		"email":         "owner@example.com",
		"exp":           jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestRegisterVendorValidation(t *testing.T) {
	e := echo.New()

	t.Run("RegisterVendor - Missing Fields", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/register", map[string]string{
			"business_name": "Sharma Kirana",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.RegisterVendor(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "All fields are required", response["message"])
	})

	t.Run("RegisterVendor - Invalid Mobile", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/register", map[string]string{
			"mobile_number": "12345",
			"business_name": "Sharma Kirana",
			"email":         "owner@example.com",
			"password":      "strongpassword",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.RegisterVendor(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Invalid mobile number", response["message"])
	})

	t.Run("RegisterVendor - Short Password", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/register", map[string]string{
			"mobile_number": "9876543210",
			"business_name": "Sharma Kirana",
			"email":         "owner@example.com",
			"password":      "short",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.RegisterVendor(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Contains(t, response["message"], "at least 8 characters")
	})
}

func TestProductValidation(t *testing.T) {
	e := echo.New()

	t.Run("CreateProduct - Unauthorized", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/products", map[string]string{
			"name": "Toor Dal",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.CreateProduct(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("CreateProduct - Missing Name", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/products", map[string]interface{}{
			"stock": 5,
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", vendorToken("9876543210", "Sharma Kirana"))

		err := handler.CreateProduct(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Product name is required", response["message"])
	})
}

func TestOfferValidation(t *testing.T) {
	e := echo.New()

	t.Run("CreateOffer - Invalid Value Type", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/offers", map[string]interface{}{
			"title":      "Festive Sale",
			"value_type": "points",
			"value":      50,
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", vendorToken("9876543210", "Sharma Kirana"))

		err := handler.CreateOffer(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Invalid value type", response["message"])
	})

	t.Run("CreateOffer - Percent Above 100", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/vendor/offers", map[string]interface{}{
			"title":      "Festive Sale",
			"value_type": "%",
			"value":      150,
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", vendorToken("9876543210", "Sharma Kirana"))

		err := handler.CreateOffer(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Percentage offers cannot exceed 100", response["message"])
	})
}

func TestUpdateOrderStatusValidation(t *testing.T) {
	e := echo.New()

	t.Run("UpdateOrderStatus - Invalid Status", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/vendor/orders/order-1/status", map[string]string{
			"status": "Shipped",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("order-1")
		c.Set("user", vendorToken("9876543210", "Sharma Kirana"))

		err := handler.UpdateOrderStatus(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Invalid status", response["message"])
	})

	t.Run("UpdateOrderStatus - Unauthorized", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/vendor/orders/order-1/status", map[string]string{
			"status": "Approved",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("order-1")

		err := handler.UpdateOrderStatus(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateProfileValidation(t *testing.T) {
	e := echo.New()

	t.Run("UpdateProfile - Degenerate Polygon", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/vendor/profile", map[string]interface{}{
			"service_areas": []map[string]interface{}{
				{"points": []map[string]float64{{"latitude": 0, "longitude": 0}, {"latitude": 1, "longitude": 1}}},
			},
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", vendorToken("9876543210", "Sharma Kirana"))

		err := handler.UpdateProfile(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Service areas need at least 3 points", response["message"])
	})

	t.Run("UpdateProfile - Negative Charge", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/vendor/profile", map[string]interface{}{
			"delivery_charge": -10,
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", vendorToken("9876543210", "Sharma Kirana"))

		err := handler.UpdateProfile(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
