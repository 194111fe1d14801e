package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	config "kiranakart/config/database"
	"kiranakart/internal/vendorHandler/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ListOwnProducts returns the vendor's full catalog, hidden items
// included.
func ListOwnProducts(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `
		SELECT id, name, description, category, image, stock, hidden, prices, variants, measurements
		FROM products
		WHERE vendor_mobile = $1
		ORDER BY name`
	rows, err := config.Pool.Query(ctx, query, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}
	defer rows.Close()

	var products []map[string]interface{}
	for rows.Next() {
		var id, name, description, category, image string
		var stock int
		var hidden bool
		var pricesJSON, variantsJSON, measurementsJSON []byte
		if err := rows.Scan(&id, &name, &description, &category, &image, &stock, &hidden, &pricesJSON, &variantsJSON, &measurementsJSON); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to scan product"})
		}

		product := map[string]interface{}{
			"id": id, "name": name, "description": description,
			"category": category, "image": image, "stock": stock, "hidden": hidden,
		}
		for key, raw := range map[string][]byte{"prices": pricesJSON, "variants": variantsJSON, "measurements": measurementsJSON} {
			var doc []map[string]interface{}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &doc); err != nil {
					return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to parse product"})
				}
			}
			product[key] = doc
		}
		products = append(products, product)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}

// CreateProduct adds one catalog item.
func CreateProduct(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	var req models.ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Product name is required"})
	}

	productID := uuid.New().String()
	pricesJSON, variantsJSON, measurementsJSON, err := marshalProductDocs(req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to encode product"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `
		INSERT INTO products (id, vendor_mobile, name, description, category, image, stock, hidden, prices, variants, measurements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`
	_, err = config.Pool.Exec(ctx, query,
		productID, vendorMobile, req.Name, req.Description, req.Category, req.Image,
		req.Stock, req.Hidden, pricesJSON, variantsJSON, measurementsJSON,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create product"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Product created successfully",
		"product_id": productID,
	})
}

// UpdateProduct replaces one catalog item document.
func UpdateProduct(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	productID := c.Param("id")

	var req models.ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Product name is required"})
	}

	pricesJSON, variantsJSON, measurementsJSON, err := marshalProductDocs(req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to encode product"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, image = $4, stock = $5, hidden = $6,
		    prices = $7, variants = $8, measurements = $9, updated_at = NOW()
		WHERE id = $10 AND vendor_mobile = $11`
	tag, err := config.Pool.Exec(ctx, query,
		req.Name, req.Description, req.Category, req.Image, req.Stock, req.Hidden,
		pricesJSON, variantsJSON, measurementsJSON, productID, vendorMobile,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update product"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product updated successfully"})
}

// DeleteProduct removes one catalog item. Cart lines pointing at it are
// pruned lazily on the customer side.
func DeleteProduct(c echo.Context) error {
	vendorMobile, _, err := vendorClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	productID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tag, err := config.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND vendor_mobile = $2`, productID, vendorMobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete product"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func marshalProductDocs(req models.ProductRequest) (prices, variants, measurements []byte, err error) {
	if prices, err = json.Marshal(req.Prices); err != nil {
		return nil, nil, nil, err
	}
	if variants, err = json.Marshal(req.Variants); err != nil {
		return nil, nil, nil, err
	}
	if measurements, err = json.Marshal(req.Measurements); err != nil {
		return nil, nil, nil, err
	}
	return prices, variants, measurements, nil
}
