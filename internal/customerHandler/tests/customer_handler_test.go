package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handler "kiranakart/internal/customerHandler"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// customerToken builds a parsed token the way the JWT middleware leaves
// it on the context.
func customerToken(id, name, email string) *jwt.Token {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": id,
		"name":        name,
		"email":       email,
		"exp":         jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestCustomerRegisterValidation(t *testing.T) {
	e := echo.New()

	t.Run("Register - Missing Fields", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/register", map[string]string{
			"name": "Asha",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.RegisterCustomer(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "All fields are required", response["message"])
	})

	t.Run("Register - Invalid Email", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/register", map[string]string{
			"name":     "Asha",
			"email":    "not-an-email",
			"password": "strongpassword",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.RegisterCustomer(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Invalid email format", response["message"])
	})

	t.Run("Register - Short Password", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/register", map[string]string{
			"name":     "Asha",
			"email":    "asha@example.com",
			"password": "short",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.RegisterCustomer(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Contains(t, response["message"], "at least 8 characters")
	})
}

func TestCartSessionResolution(t *testing.T) {
	e := echo.New()

	t.Run("GetCart - No Session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart/9876543210", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("vendor")
		c.SetParamValues("9876543210")

		err := handler.GetCart(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("IncrementCartItem - No Session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cart/9876543210/increment/item-1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("vendor", "item")
		c.SetParamValues("9876543210", "item-1")

		err := handler.IncrementCartItem(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCheckoutValidation(t *testing.T) {
	e := echo.New()

	t.Run("Checkout - Unauthorized", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/checkout/9876543210", map[string]string{
			"delivery_mode": "Pickup",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("vendor")
		c.SetParamValues("9876543210")

		err := handler.Checkout(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Checkout - Invalid Delivery Mode", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/checkout/9876543210", map[string]string{
			"delivery_mode": "Drone",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("vendor")
		c.SetParamValues("9876543210")
		c.Set("user", customerToken("cust-1", "Asha", "asha@example.com"))

		err := handler.Checkout(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Invalid delivery mode", response["message"])
	})
}

func TestAddressValidation(t *testing.T) {
	e := echo.New()

	t.Run("CreateAddress - Unauthorized", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/addresses", map[string]string{
			"full_address": "12 MG Road",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.CreateAddress(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("CreateAddress - Missing Address", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/customer/addresses", map[string]string{
			"label": "Home",
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user", customerToken("cust-1", "Asha", "asha@example.com"))

		err := handler.CreateAddress(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &response)
		assert.Equal(t, "Address is required", response["message"])
	})
}

func TestMergeGuestCartRequiresGuestID(t *testing.T) {
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/customer/cart/9876543210/merge", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("vendor")
	c.SetParamValues("9876543210")
	c.Set("user", customerToken("cust-1", "Asha", "asha@example.com"))

	err := handler.MergeGuestCart(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
