package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	config "kiranakart/config/database"
	"kiranakart/internal/feedengine"
	"kiranakart/internal/geoengine"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// UseLogger installs the shared zap logger; main calls this once.
func UseLogger(l *zap.Logger) {
	logger = l
}

// activeMinBalance is the balance threshold below which a vendor stops
// appearing as active.
func activeMinBalance() float64 {
	v := os.Getenv("VENDOR_ACTIVE_MIN_BALANCE")
	if v == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// customerPoint reads the optional lat/lng query params. A missing or
// malformed pair means "unknown location".
func customerPoint(c echo.Context) *geoengine.Point {
	latStr, lngStr := c.QueryParam("lat"), c.QueryParam("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &geoengine.Point{Latitude: lat, Longitude: lng}
}

func loadVendors(ctx context.Context) ([]feedengine.Vendor, error) {
	query := `
		SELECT v.mobile_number, v.business_name, v.category, v.latitude, v.longitude,
		       v.service_areas, v.balance, v.average_rating, v.rating_count, v.is_disabled,
		       v.delivery_charge, v.free_delivery_above,
		       (SELECT COUNT(*) FROM products p WHERE p.vendor_mobile = v.mobile_number AND NOT p.hidden)
		FROM vendors v`
	rows, err := config.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []feedengine.Vendor
	for rows.Next() {
		var v feedengine.Vendor
		var lat, lng *float64
		var areasJSON []byte
		err := rows.Scan(
			&v.MobileNumber, &v.BusinessName, &v.Category, &lat, &lng,
			&areasJSON, &v.Balance, &v.AverageRating, &v.RatingCount, &v.IsDisabled,
			&v.DeliveryCharge, &v.FreeDeliveryAbove, &v.ProductCount,
		)
		if err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			v.Location = &geoengine.Point{Latitude: *lat, Longitude: *lng}
		}
		if len(areasJSON) > 0 {
			if err := json.Unmarshal(areasJSON, &v.ServiceAreas); err != nil {
				return nil, err
			}
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func loadProducts(ctx context.Context, vendorNames map[string]string) (map[string][]feedengine.Product, error) {
	query := `
		SELECT id, vendor_mobile, name, category, prices, stock, hidden, image
		FROM products
		ORDER BY vendor_mobile, created_at`
	rows, err := config.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string][]feedengine.Product)
	for rows.Next() {
		var p feedengine.Product
		var pricesJSON []byte
		if err := rows.Scan(&p.ID, &p.VendorMobile, &p.Name, &p.Category, &pricesJSON, &p.Stock, &p.Hidden, &p.Image); err != nil {
			return nil, err
		}

		var prices []struct {
			MRP          float64 `json:"mrp"`
			SellingPrice float64 `json:"selling_price"`
			Measurement  string  `json:"measurement"`
		}
		if len(pricesJSON) > 0 {
			if err := json.Unmarshal(pricesJSON, &prices); err != nil {
				return nil, err
			}
		}
		// first price entry is canonical
		if len(prices) > 0 {
			p.MRP = prices[0].MRP
			p.Price = prices[0].SellingPrice
			p.Measurement = prices[0].Measurement
		}

		p.VendorName = vendorNames[p.VendorMobile]
		products[p.VendorMobile] = append(products[p.VendorMobile], p)
	}
	return products, rows.Err()
}

func loadAds(ctx context.Context) ([]feedengine.Ad, error) {
	rows, err := config.Pool.Query(ctx, `SELECT url, is_video, created_at FROM ads ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []feedengine.Ad
	for rows.Next() {
		var ad feedengine.Ad
		if err := rows.Scan(&ad.URL, &ad.IsVideo, &ad.Timestamp); err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

// ListVendors returns the annotated, ranked vendor list for the vendor
// screen.
func ListVendors(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vendors, err := loadVendors(ctx)
	if err != nil {
		logger.Error("failed to load vendors", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch vendors"})
	}

	location := customerPoint(c)
	minBalance := activeMinBalance()

	ranked := make([]feedengine.RankedVendor, 0, len(vendors))
	for _, v := range vendors {
		ranked = append(ranked, feedengine.AnnotateVendor(v, location, minBalance))
	}
	feedengine.SortVendors(ranked)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Vendors fetched successfully",
		"vendors": ranked,
	})
}

// ListVendorProducts returns one vendor's visible catalog.
func ListVendorProducts(c echo.Context) error {
	mobile := c.Param("mobile")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	query := `
		SELECT id, name, category, prices, stock, hidden, variants, image
		FROM products
		WHERE vendor_mobile = $1 AND NOT hidden
		ORDER BY created_at`
	rows, err := config.Pool.Query(ctx, query, mobile)
	if err != nil {
		logger.Error("failed to load catalog", zap.String("vendor", mobile), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}
	defer rows.Close()

	var products []map[string]interface{}
	for rows.Next() {
		var id, name, category, image string
		var stock int
		var hidden bool
		var pricesJSON, variantsJSON []byte
		if err := rows.Scan(&id, &name, &category, &pricesJSON, &stock, &hidden, &variantsJSON, &image); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to parse products"})
		}

		product := map[string]interface{}{
			"id": id, "name": name, "category": category,
			"stock": stock, "image": image,
		}
		var prices, variants interface{}
		if len(pricesJSON) > 0 {
			json.Unmarshal(pricesJSON, &prices)
		}
		if len(variantsJSON) > 0 {
			json.Unmarshal(variantsJSON, &variants)
		}
		product["prices"] = prices
		product["variants"] = variants
		products = append(products, product)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Products fetched successfully",
		"products": products,
	})
}

// ListVendorOffers returns a vendor's active offers.
func ListVendorOffers(c echo.Context) error {
	mobile := c.Param("mobile")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	query := `
		SELECT id, title, description, value_type, value, applicable_on, applicable_items, minimum_order_amount, active
		FROM offers
		WHERE vendor_mobile = $1 AND active`
	rows, err := config.Pool.Query(ctx, query, mobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch offers"})
	}
	defer rows.Close()

	var offers []map[string]interface{}
	for rows.Next() {
		var id, title, description, valueType, applicableOn string
		var value float64
		var minAmount *float64
		var active bool
		var itemsJSON []byte
		if err := rows.Scan(&id, &title, &description, &valueType, &value, &applicableOn, &itemsJSON, &minAmount, &active); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to parse offers"})
		}

		var items interface{}
		if len(itemsJSON) > 0 {
			json.Unmarshal(itemsJSON, &items)
		}
		offers = append(offers, map[string]interface{}{
			"id": id, "title": title, "description": description,
			"value_type": valueType, "value": value,
			"applicable_on": applicableOn, "applicable_items": items,
			"minimum_order_amount": minAmount, "active": active,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Offers fetched successfully",
		"offers":  offers,
	})
}

// ListAds returns the promotional media list used for ad injection.
func ListAds(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ads, err := loadAds(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch ads"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Ads fetched successfully",
		"ads":     ads,
	})
}
