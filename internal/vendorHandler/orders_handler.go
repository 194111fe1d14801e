package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"kiranakart/config/cache"
	config "kiranakart/config/database"
	custmodels "kiranakart/internal/customerHandler/models"
	"kiranakart/internal/vendorHandler/models"
	"kiranakart/utils"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// ListVendorOrders returns incoming orders for the vendor, newest first.
// An optional ?status= filter narrows the list.
func ListVendorOrders(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	statusFilter := c.QueryParam("status")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `
		SELECT id, customer_id, items, total_amount, delivery_charge, total_discount, delivery_mode, address, status, created_at, updated_at
		FROM vendor_orders
		WHERE vendor_mobile = $1`
	args := []interface{}{vendorMobile}
	if statusFilter != "" {
		query += ` AND status = $2`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := config.Pool.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}
	defer rows.Close()

	var orders []custmodels.Order
	for rows.Next() {
		var o custmodels.Order
		var itemsJSON, addressJSON []byte
		err := rows.Scan(
			&o.ID, &o.CustomerID, &itemsJSON, &o.TotalAmount, &o.DeliveryCharge,
			&o.TotalDiscount, &o.DeliveryMode, &addressJSON, &o.Status,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to scan order"})
		}
		o.VendorMobile = vendorMobile
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to parse order"})
		}
		if len(addressJSON) > 0 {
			if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to parse order"})
			}
		}
		orders = append(orders, o)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders})
}

// UpdateOrderStatus moves one order to Approved or Rejected. Both order
// mirrors are updated and the customer's event channel is notified.
func UpdateOrderStatus(c echo.Context) error {
	vendorMobile, businessName, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	orderID := c.Param("id")

	var req models.StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.Status != custmodels.OrderStatusApproved && req.Status != custmodels.OrderStatusRejected {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var customerID, currentStatus string
	query := `SELECT customer_id, status FROM vendor_orders WHERE id = $1 AND vendor_mobile = $2`
	err = config.Pool.QueryRow(ctx, query, orderID, vendorMobile).Scan(&customerID, &currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Order not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch order"})
	}
	if currentStatus != custmodels.OrderStatusPending {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Order has already been " + currentStatus})
	}

	for _, table := range []string{"vendor_orders", "customer_orders"} {
		if _, err := config.Pool.Exec(ctx, `UPDATE `+table+` SET status = $1, updated_at = NOW() WHERE id = $2`, req.Status, orderID); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update order"})
		}
	}

	event, err := json.Marshal(map[string]string{"order_id": orderID, "status": req.Status})
	if err == nil {
		if err := cache.Client.Publish(ctx, "orders:"+customerID, event).Err(); err != nil {
			log.Printf("failed to publish order event for %s: %v", orderID, err)
		}
	}

	// email is best effort, same as the confirmation at checkout
	var customerName, customerEmail string
	err = config.Pool.QueryRow(ctx, `SELECT name, email FROM customers WHERE id = $1`, customerID).Scan(&customerName, &customerEmail)
	if err == nil {
		if err := utils.SendOrderStatusUpdate(customerEmail, customerName, orderID, req.Status); err != nil {
			log.Printf("Failed to send email: %v", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order " + req.Status + " by " + businessName,
		"status":  req.Status,
	})
}
