package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kiranakart/config/cache"
	config "kiranakart/config/database"
	"kiranakart/internal/customerHandler/models"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// OrderEventChannel is the redis channel carrying status events for one
// customer's orders.
func OrderEventChannel(customerID string) string {
	return "orders:" + customerID
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var itemsJSON, offersJSON, addressJSON []byte
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.VendorMobile, &itemsJSON,
		&o.TotalAmount, &o.DeliveryCharge, &o.TotalDiscount,
		&offersJSON, &o.DeliveryMode, &addressJSON, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, err
	}
	if len(offersJSON) > 0 {
		if err := json.Unmarshal(offersJSON, &o.AppliedOffers); err != nil {
			return nil, err
		}
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

const orderColumns = `id, customer_id, vendor_mobile, items, total_amount, delivery_charge, total_discount, applied_offers, delivery_mode, address, status, created_at, updated_at`

// ListOrders returns the customer's order history, newest first.
func ListOrders(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM customer_orders WHERE customer_id = $1 ORDER BY created_at DESC`, orderColumns)
	rows, err := config.Pool.Query(ctx, query, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to scan order"})
		}
		orders = append(orders, *order)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders})
}

// GetOrder returns one order from the customer's history.
func GetOrder(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	orderID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM customer_orders WHERE id = $1 AND customer_id = $2`, orderColumns)
	order, err := scanOrder(config.Pool.QueryRow(ctx, query, orderID, customerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Order not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch order"})
	}

	return c.JSON(http.StatusOK, order)
}

// OrderEvents streams status changes for one order as server-sent
// events. Events arrive over the customer's redis channel; the stream
// closes itself once a terminal status goes out.
func OrderEvents(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	orderID := c.Param("id")

	ctx := c.Request().Context()

	query := `SELECT status FROM customer_orders WHERE id = $1 AND customer_id = $2`
	var status string
	err = config.Pool.QueryRow(ctx, query, orderID, customerID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Order not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch order"})
	}

	sub := cache.Client.Subscribe(ctx, OrderEventChannel(customerID))
	defer sub.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	writeEvent := func(status string) error {
		payload, err := json.Marshal(map[string]string{"order_id": orderID, "status": status})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
			return err
		}
		resp.Flush()
		return nil
	}

	// send the current status immediately so the client never waits on
	// an event that already happened
	if err := writeEvent(status); err != nil {
		return err
	}
	if status != models.OrderStatusPending {
		return nil
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event struct {
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			if event.OrderID != orderID {
				continue
			}
			if err := writeEvent(event.Status); err != nil {
				return nil
			}
			if event.Status != models.OrderStatusPending {
				return nil
			}
		}
	}
}
