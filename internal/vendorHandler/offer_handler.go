package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	config "kiranakart/config/database"
	"kiranakart/internal/offerengine"
	"kiranakart/internal/vendorHandler/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func validOfferRequest(req models.OfferRequest) string {
	if req.Title == "" {
		return "Offer title is required"
	}
	if req.ValueType != offerengine.ValueTypeFlat && req.ValueType != offerengine.ValueTypePercent {
		return "Invalid value type"
	}
	if req.Value <= 0 {
		return "Offer value must be greater than zero"
	}
	if req.ValueType == offerengine.ValueTypePercent && req.Value > 100 {
		return "Percentage offers cannot exceed 100"
	}
	return ""
}

// ListOwnOffers returns the vendor's offers, inactive ones included.
func ListOwnOffers(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `
		SELECT id, title, description, value_type, value, applicable_on, applicable_items, minimum_order_amount, active
		FROM offers
		WHERE vendor_mobile = $1
		ORDER BY created_at DESC`
	rows, err := config.Pool.Query(ctx, query, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch offers"})
	}
	defer rows.Close()

	var offers []offerengine.Offer
	for rows.Next() {
		var o offerengine.Offer
		var itemsJSON []byte
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.ValueType, &o.Value, &o.ApplicableOn, &itemsJSON, &o.MinimumOrderAmount, &o.Active); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to scan offer"})
		}
		if len(itemsJSON) > 0 {
			if err := json.Unmarshal(itemsJSON, &o.ApplicableItems); err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to parse offer"})
			}
		}
		offers = append(offers, o)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"offers": offers})
}

// CreateOffer adds one offer.
func CreateOffer(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	var req models.OfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if msg := validOfferRequest(req); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msg})
	}

	offerID := uuid.New().String()
	itemsJSON, err := json.Marshal(req.ApplicableItems)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to encode offer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	applicableOn := req.ApplicableOn
	if applicableOn == "" {
		applicableOn = offerengine.ApplicableOnAll
	}

	query := `
		INSERT INTO offers (id, vendor_mobile, title, description, value_type, value, applicable_on, applicable_items, minimum_order_amount, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`
	_, err = config.Pool.Exec(ctx, query,
		offerID, vendorMobile, req.Title, req.Description, req.ValueType, req.Value,
		applicableOn, itemsJSON, req.MinimumOrderAmount, req.Active,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create offer"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Offer created successfully",
		"offer_id": offerID,
	})
}

// UpdateOffer replaces one offer.
func UpdateOffer(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	offerID := c.Param("id")

	var req models.OfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if msg := validOfferRequest(req); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msg})
	}

	itemsJSON, err := json.Marshal(req.ApplicableItems)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to encode offer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	applicableOn := req.ApplicableOn
	if applicableOn == "" {
		applicableOn = offerengine.ApplicableOnAll
	}

	query := `
		UPDATE offers
		SET title = $1, description = $2, value_type = $3, value = $4, applicable_on = $5,
		    applicable_items = $6, minimum_order_amount = $7, active = $8
		WHERE id = $9 AND vendor_mobile = $10`
	tag, err := config.Pool.Exec(ctx, query,
		req.Title, req.Description, req.ValueType, req.Value, applicableOn,
		itemsJSON, req.MinimumOrderAmount, req.Active, offerID, vendorMobile,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update offer"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Offer not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Offer updated successfully"})
}

// DeleteOffer removes one offer. Orders that already applied it keep
// their snapshot.
func DeleteOffer(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	offerID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tag, err := config.Pool.Exec(ctx, `DELETE FROM offers WHERE id = $1 AND vendor_mobile = $2`, offerID, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete offer"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Offer not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Offer deleted successfully"})
}
