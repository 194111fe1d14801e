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
	"kiranakart/internal/cartengine"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// cartStoreFor resolves the active cart store for the session: the
// remote per-vendor line collection for an authenticated customer, or
// the guest key-value cart identified by the X-Guest-ID header.
func cartStoreFor(c echo.Context) (cartengine.Store, error) {
	if customerID, _, _, err := customerClaims(c); err == nil {
		return cartengine.NewRemoteStore(config.Pool, customerID), nil
	}

	guestID := c.Request().Header.Get("X-Guest-ID")
	if guestID == "" {
		return nil, errors.New("no session")
	}
	return cartengine.NewGuestStore(cache.Client, guestID), nil
}

type productVariant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MRP          float64 `json:"mrp"`
	SellingPrice float64 `json:"selling_price"`
	Measurement  string  `json:"measurement"`
	Stock        int     `json:"stock"`
	Hidden       bool    `json:"hidden"`
}

var errItemNotFound = errors.New("item not found")

// loadItemSnapshot reads the catalog fields copied onto a new cart line.
// When variantID is set the snapshot uses that variant's price and stock.
func loadItemSnapshot(ctx context.Context, vendor, itemID, variantID string) (cartengine.ItemSnapshot, error) {
	var name, image string
	var stock int
	var pricesJSON, variantsJSON []byte

	query := `SELECT name, prices, stock, variants, image FROM products WHERE id = $1 AND vendor_mobile = $2 AND NOT hidden`
	err := config.Pool.QueryRow(ctx, query, itemID, vendor).Scan(&name, &pricesJSON, &stock, &variantsJSON, &image)
	if errors.Is(err, pgx.ErrNoRows) {
		return cartengine.ItemSnapshot{}, errItemNotFound
	}
	if err != nil {
		return cartengine.ItemSnapshot{}, err
	}

	var prices []cartengine.PriceOption
	if len(pricesJSON) > 0 {
		if err := json.Unmarshal(pricesJSON, &prices); err != nil {
			return cartengine.ItemSnapshot{}, err
		}
	}

	snapshot := cartengine.ItemSnapshot{
		ID:     itemID,
		Name:   name,
		Prices: prices,
		Stock:  stock,
		Image:  image,
	}
	// first price entry is canonical
	if len(prices) > 0 {
		snapshot.Price = prices[0].SellingPrice
		snapshot.Measurement = prices[0].Measurement
	}

	if variantID == "" {
		return snapshot, nil
	}

	var variants []productVariant
	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &variants); err != nil {
			return cartengine.ItemSnapshot{}, err
		}
	}
	for _, v := range variants {
		if v.ID == variantID && !v.Hidden {
			snapshot.VariantID = v.ID
			snapshot.Name = v.Name
			snapshot.Price = v.SellingPrice
			snapshot.Measurement = v.Measurement
			snapshot.Stock = v.Stock
			snapshot.Prices = []cartengine.PriceOption{{MRP: v.MRP, SellingPrice: v.SellingPrice, Measurement: v.Measurement}}
			return snapshot, nil
		}
	}
	return cartengine.ItemSnapshot{}, errItemNotFound
}

// catalogIDSet returns every id a cart line may legitimately reference:
// visible item ids plus their visible variant ids.
func catalogIDSet(ctx context.Context, vendor string) (map[string]bool, error) {
	rows, err := config.Pool.Query(ctx, `SELECT id, variants FROM products WHERE vendor_mobile = $1 AND NOT hidden`, vendor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		var variantsJSON []byte
		if err := rows.Scan(&id, &variantsJSON); err != nil {
			return nil, err
		}
		ids[id] = true

		var variants []productVariant
		if len(variantsJSON) > 0 {
			if err := json.Unmarshal(variantsJSON, &variants); err != nil {
				return nil, err
			}
		}
		for _, v := range variants {
			if !v.Hidden {
				ids[v.ID] = true
			}
		}
	}
	return ids, rows.Err()
}

// GetCart returns the vendor-scoped cart with derived count and total.
// Stale lines are pruned against the live catalog before totals are
// computed, so a deleted catalog item silently disappears from the cart.
func GetCart(c echo.Context) error {
	store, err := cartStoreFor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "No customer or guest session"})
	}
	vendor := c.Param("vendor")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	svc := cartengine.NewService(store)

	catalog, err := catalogIDSet(ctx, vendor)
	if err != nil {
		log.Printf("failed to load catalog for prune: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch cart"})
	}
	if _, err := svc.Prune(ctx, vendor, catalog); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch cart"})
	}

	lines, err := svc.Lines(ctx, vendor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch cart"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Cart fetched successfully",
		"lines":     lines,
		"cartCount": cartengine.Count(lines),
		"cartTotal": cartengine.Total(lines),
	})
}

// IncrementCartItem adds one of the item (or variant, via ?variant=) to
// the active cart.
func IncrementCartItem(c echo.Context) error {
	store, err := cartStoreFor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "No customer or guest session"})
	}
	vendor := c.Param("vendor")
	itemID := c.Param("item")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	snapshot, err := loadItemSnapshot(ctx, vendor, itemID, c.QueryParam("variant"))
	if errors.Is(err, errItemNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Item not found in vendor catalog"})
	}
	if err != nil {
		log.Printf("failed to load item snapshot: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update cart"})
	}

	line, err := cartengine.NewService(store).Increment(ctx, vendor, snapshot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update cart"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item added to cart",
		"line":    line,
	})
}

// DecrementCartItem removes one of the line; the line disappears when
// the quantity would reach zero.
func DecrementCartItem(c echo.Context) error {
	store, err := cartStoreFor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "No customer or guest session"})
	}
	vendor := c.Param("vendor")
	lineID := c.Param("item")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	removed, err := cartengine.NewService(store).Decrement(ctx, vendor, lineID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update cart"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Cart updated",
		"removed": removed,
	})
}

// MergeGuestCart folds a guest cart into the authenticated customer's
// remote cart after login. The guest id comes from the X-Guest-ID header
// the client used before logging in.
func MergeGuestCart(c echo.Context) error {
	customerID, _, _, err := customerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	guestID := c.Request().Header.Get("X-Guest-ID")
	if guestID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "X-Guest-ID header is required"})
	}
	vendor := c.Param("vendor")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guest := cartengine.NewGuestStore(cache.Client, guestID)
	remote := cartengine.NewRemoteStore(config.Pool, customerID)

	merged, err := cartengine.Merge(ctx, vendor, guest, remote)
	if err != nil {
		log.Printf("failed to merge guest cart: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to merge cart"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Guest cart merged",
		"merged":  merged,
	})
}
