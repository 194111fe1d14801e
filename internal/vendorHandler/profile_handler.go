package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	config "kiranakart/config/database"
	"kiranakart/internal/geoengine"

	"github.com/labstack/echo/v4"
)

type profileRequest struct {
	ServiceAreas      []geoengine.Polygon `json:"service_areas"`
	DeliveryCharge    float64             `json:"delivery_charge"`
	FreeDeliveryAbove float64             `json:"free_delivery_above"`
}

// UpdateProfile sets the vendor's service areas and delivery pricing.
// An empty service-area list means the vendor delivers everywhere.
func UpdateProfile(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	for _, polygon := range req.ServiceAreas {
		if len(polygon.Points) > 0 && len(polygon.Points) < 3 {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Service areas need at least 3 points"})
		}
	}
	if req.DeliveryCharge < 0 || req.FreeDeliveryAbove < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Delivery charges cannot be negative"})
	}

	areasJSON, err := json.Marshal(req.ServiceAreas)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to encode service areas"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `UPDATE vendors SET service_areas = $1, delivery_charge = $2, free_delivery_above = $3 WHERE mobile_number = $4`
	if _, err := config.Pool.Exec(ctx, query, areasJSON, req.DeliveryCharge, req.FreeDeliveryAbove, vendorMobile); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update profile"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}
