package handler

import (
	"context"
	"net/http"
	"time"

	config "kiranakart/config/database"
	"kiranakart/internal/customerHandler/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ListAddresses returns the customer's saved addresses, primary first.
func ListAddresses(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `
		SELECT id, label, full_address, latitude, longitude, is_primary
		FROM addresses
		WHERE customer_id = $1
		ORDER BY is_primary DESC, created_at DESC`
	rows, err := config.Pool.Query(ctx, query, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch addresses"})
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.Label, &a.FullAddress, &a.Latitude, &a.Longitude, &a.IsPrimary); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to scan address"})
		}
		addresses = append(addresses, a)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"addresses": addresses})
}

// CreateAddress saves a new address. Marking it primary demotes the
// previous primary.
func CreateAddress(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	var req models.AddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.FullAddress == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Address is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if req.IsPrimary {
		if _, err := config.Pool.Exec(ctx, `UPDATE addresses SET is_primary = FALSE WHERE customer_id = $1`, customerID); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save address"})
		}
	}

	address := models.Address{
		ID:          uuid.New().String(),
		Label:       req.Label,
		FullAddress: req.FullAddress,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsPrimary:   req.IsPrimary,
	}
	query := `
		INSERT INTO addresses (id, customer_id, label, full_address, latitude, longitude, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
	_, err = config.Pool.Exec(ctx, query,
		address.ID, customerID, address.Label, address.FullAddress,
		address.Latitude, address.Longitude, address.IsPrimary,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save address"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Address saved successfully",
		"address": address,
	})
}

// DeleteAddress removes a saved address.
func DeleteAddress(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	addressID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tag, err := config.Pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND customer_id = $2`, addressID, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete address"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Address not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Address deleted successfully"})
}
