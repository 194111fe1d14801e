package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"kiranakart/config/cache"
	config "kiranakart/config/database"
	"kiranakart/internal/cartengine"
	"kiranakart/internal/customerHandler/models"
	"kiranakart/internal/geoengine"
	"kiranakart/internal/offerengine"
	"kiranakart/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// Initialize Midtrans Core API client
var coreAPI coreapi.Client

func InitPayments() {
	// retrieve server key from .env
	ServerKey := os.Getenv("ServerKey")

	coreAPI = coreapi.Client{}
	coreAPI.New(ServerKey, midtrans.Sandbox)
}

type vendorRecord struct {
	BusinessName      string
	ServiceAreas      []geoengine.Polygon
	DeliveryCharge    float64
	FreeDeliveryAbove float64
	IsDisabled        bool
}

func loadVendorRecord(ctx context.Context, mobile string) (*vendorRecord, error) {
	var v vendorRecord
	var areasJSON []byte
	query := `SELECT business_name, service_areas, delivery_charge, free_delivery_above, is_disabled FROM vendors WHERE mobile_number = $1`
	err := config.Pool.QueryRow(ctx, query, mobile).Scan(
		&v.BusinessName, &areasJSON, &v.DeliveryCharge, &v.FreeDeliveryAbove, &v.IsDisabled,
	)
	if err != nil {
		return nil, err
	}
	if len(areasJSON) > 0 {
		if err := json.Unmarshal(areasJSON, &v.ServiceAreas); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

// stockByCatalogID maps every visible item and variant id to its current
// stock.
func stockByCatalogID(ctx context.Context, vendor string) (map[string]int, error) {
	rows, err := config.Pool.Query(ctx, `SELECT id, stock, variants FROM products WHERE vendor_mobile = $1 AND NOT hidden`, vendor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var id string
		var qty int
		var variantsJSON []byte
		if err := rows.Scan(&id, &qty, &variantsJSON); err != nil {
			return nil, err
		}
		stock[id] = qty

		var variants []productVariant
		if len(variantsJSON) > 0 {
			if err := json.Unmarshal(variantsJSON, &variants); err != nil {
				return nil, err
			}
		}
		for _, v := range variants {
			if !v.Hidden {
				stock[v.ID] = v.Stock
			}
		}
	}
	return stock, rows.Err()
}

func loadOffer(ctx context.Context, vendor, offerID string) (*offerengine.Offer, error) {
	var o offerengine.Offer
	var itemsJSON []byte
	query := `
		SELECT id, title, description, value_type, value, applicable_on, applicable_items, minimum_order_amount, active
		FROM offers
		WHERE id = $1 AND vendor_mobile = $2`
	err := config.Pool.QueryRow(ctx, query, offerID, vendor).Scan(
		&o.ID, &o.Title, &o.Description, &o.ValueType, &o.Value,
		&o.ApplicableOn, &itemsJSON, &o.MinimumOrderAmount, &o.Active,
	)
	if err != nil {
		return nil, err
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.ApplicableItems); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func loadAddress(ctx context.Context, customerID, addressID string) (*models.Address, error) {
	var a models.Address
	query := `SELECT id, label, full_address, latitude, longitude, is_primary FROM addresses WHERE id = $1 AND customer_id = $2`
	err := config.Pool.QueryRow(ctx, query, addressID, customerID).Scan(
		&a.ID, &a.Label, &a.FullAddress, &a.Latitude, &a.Longitude, &a.IsPrimary,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Checkout validates the vendor cart and writes the order snapshot.
func Checkout(c echo.Context) error {
	customerID, customerName, customerEmail, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	vendorMobile := c.Param("vendor")

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.DeliveryMode != models.DeliveryModeHome && req.DeliveryMode != models.DeliveryModePickup {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid delivery mode"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	vendor, err := loadVendorRecord(ctx, vendorMobile)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Vendor not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch vendor"})
	}
	if vendor.IsDisabled {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Vendor is currently unavailable"})
	}

	svc := cartengine.NewService(cartengine.NewRemoteStore(config.Pool, customerID))

	// cross-check the cart against the live catalog before anything else
	catalog, err := catalogIDSet(ctx, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch catalog"})
	}
	pruned, err := svc.Prune(ctx, vendorMobile, catalog)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to verify cart"})
	}
	if pruned > 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Some items in your cart are no longer available"})
	}

	lines, err := svc.Lines(ctx, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch cart"})
	}
	if len(lines) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Cart is empty"})
	}

	// verify stock against the catalog, not the cart snapshot
	stock, err := stockByCatalogID(ctx, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch stock"})
	}
	for _, line := range lines {
		if line.Quantity > stock[line.EffectiveCatalogID()] {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": fmt.Sprintf("Insufficient stock for %s", line.Name),
			})
		}
	}

	subtotal := cartengine.Total(lines)
	if subtotal <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Order total must be greater than zero"})
	}

	// at most one offer; the engine guards applicability independent of
	// whatever the UI disabled
	discount := 0.0
	var appliedOffers []string
	if req.OfferID != "" {
		offer, err := loadOffer(ctx, vendorMobile, req.OfferID)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Offer not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch offer"})
		}
		if !offerengine.Applicable(*offer, subtotal) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Offer is not applicable to this cart"})
		}
		discount = offerengine.ComputeDiscount(*offer, subtotal, cartengine.OfferLines(lines))
		appliedOffers = append(appliedOffers, offer.ID)
	}

	var address *models.Address
	if req.DeliveryMode == models.DeliveryModeHome {
		if req.AddressID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Delivery address is required"})
		}
		address, err = loadAddress(ctx, customerID, req.AddressID)
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Delivery address not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch address"})
		}
		if address.FullAddress == "" || address.Latitude == nil || address.Longitude == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Delivery address is incomplete"})
		}

		point := &geoengine.Point{Latitude: *address.Latitude, Longitude: *address.Longitude}
		if !geoengine.VendorServes(point, vendor.ServiceAreas) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Address is outside the vendor's service area"})
		}
	}

	final, deliveryCharge := offerengine.FinalAmount(
		subtotal, discount,
		req.DeliveryMode == models.DeliveryModeHome,
		vendor.DeliveryCharge, vendor.FreeDeliveryAbove,
	)

	orderID := uuid.New().String()

	var vaNumbers []models.VANumber
	if req.PaymentMethod == "Online" {
		InitPayments()

		request := &coreapi.ChargeReq{
			PaymentType: coreapi.PaymentTypeBankTransfer,
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  orderID,
				GrossAmt: int64(final),
			},
			BankTransfer: &coreapi.BankTransferDetails{
				Bank: midtrans.BankBca,
			},
		}

		resp, err := coreAPI.ChargeTransaction(request)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to process online payment"})
		}
		if resp.TransactionStatus != "pending" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Payment not authorized"})
		}
		for _, va := range resp.VaNumbers {
			vaNumbers = append(vaNumbers, models.VANumber{Bank: va.Bank, VANumber: va.VANumber})
		}
	}

	order := models.Order{
		ID:             orderID,
		CustomerID:     customerID,
		VendorMobile:   vendorMobile,
		Items:          orderItems(lines),
		TotalAmount:    subtotal,
		DeliveryCharge: deliveryCharge,
		TotalDiscount:  discount,
		AppliedOffers:  appliedOffers,
		DeliveryMode:   req.DeliveryMode,
		Address:        address,
		Status:         models.OrderStatusPending,
	}

	if err := commitOrder(ctx, &order); err != nil {
		log.Printf("failed to commit order %s: %v", orderID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to place order"})
	}

	if err := utils.SendOrderConfirmation(customerEmail, customerName, orderID, final); err != nil {
		log.Printf("Failed to send email: %v", err)
	}

	return c.JSON(http.StatusOK, models.CheckoutResponse{
		Message:        "Order placed successfully",
		OrderID:        orderID,
		TotalAmount:    subtotal,
		TotalDiscount:  discount,
		DeliveryCharge: deliveryCharge,
		FinalAmount:    final,
		VaNumbers:      vaNumbers,
	})
}

func orderItems(lines map[string]cartengine.CartLine) []models.OrderItem {
	var items []models.OrderItem
	for _, line := range lines {
		item := models.OrderItem{
			ID:          line.ID,
			VariantID:   line.VariantID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Measurement: line.Measurement,
			Image:       line.Image,
		}
		if len(line.Prices) > 0 {
			item.MRP = line.Prices[0].MRP
		}
		items = append(items, item)
	}
	return items
}

// commitOrder is the single place the multi-step write sequence lives:
// stock decrement, the mirrored order documents, the cart cleanup and
// the status-event publish. The decrement is read-check-then-write with
// no optimistic token, so concurrent orders against the same item can
// over-sell; a conditional write can be slotted in here without touching
// the engines.
func commitOrder(ctx context.Context, order *models.Order) error {
	for _, item := range order.Items {
		if item.VariantID == "" {
			query := `UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND vendor_mobile = $3`
			if _, err := config.Pool.Exec(ctx, query, item.Quantity, item.ID, order.VendorMobile); err != nil {
				return err
			}
			continue
		}

		// variant stock lives inside the variants document
		var variantsJSON []byte
		if err := config.Pool.QueryRow(ctx, `SELECT variants FROM products WHERE id = $1 AND vendor_mobile = $2`, item.ID, order.VendorMobile).Scan(&variantsJSON); err != nil {
			return err
		}
		var variants []productVariant
		if len(variantsJSON) > 0 {
			if err := json.Unmarshal(variantsJSON, &variants); err != nil {
				return err
			}
		}
		for i := range variants {
			if variants[i].ID == item.VariantID {
				variants[i].Stock -= item.Quantity
			}
		}
		updated, err := json.Marshal(variants)
		if err != nil {
			return err
		}
		if _, err := config.Pool.Exec(ctx, `UPDATE products SET variants = $1, updated_at = NOW() WHERE id = $2 AND vendor_mobile = $3`, updated, item.ID, order.VendorMobile); err != nil {
			return err
		}
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	offersJSON, err := json.Marshal(order.AppliedOffers)
	if err != nil {
		return err
	}
	var addressJSON []byte
	if order.Address != nil {
		if addressJSON, err = json.Marshal(order.Address); err != nil {
			return err
		}
	}

	// the order is written twice, once under each side's namespace
	for _, table := range []string{"customer_orders", "vendor_orders"} {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, customer_id, vendor_mobile, items, total_amount, delivery_charge, total_discount, applied_offers, delivery_mode, address, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`, table)
		_, err := config.Pool.Exec(ctx, query,
			order.ID, order.CustomerID, order.VendorMobile, itemsJSON,
			order.TotalAmount, order.DeliveryCharge, order.TotalDiscount,
			offersJSON, order.DeliveryMode, addressJSON, order.Status,
		)
		if err != nil {
			return err
		}
	}

	if _, err := config.Pool.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1 AND vendor_mobile = $2`, order.CustomerID, order.VendorMobile); err != nil {
		return err
	}

	event, err := json.Marshal(map[string]string{"order_id": order.ID, "status": order.Status})
	if err != nil {
		return err
	}
	return cache.Client.Publish(ctx, OrderEventChannel(order.CustomerID), event).Err()
}
