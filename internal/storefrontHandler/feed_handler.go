package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"kiranakart/internal/feedengine"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type feedInputs struct {
	ranked   []feedengine.RankedVendor
	products map[string][]feedengine.Product
	ads      []feedengine.Ad
}

func loadFeedInputs(ctx context.Context, c echo.Context) (*feedInputs, error) {
	vendors, err := loadVendors(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(vendors))
	for _, v := range vendors {
		names[v.MobileNumber] = v.BusinessName
	}

	products, err := loadProducts(ctx, names)
	if err != nil {
		return nil, err
	}

	ads, err := loadAds(ctx)
	if err != nil {
		return nil, err
	}

	location := customerPoint(c)
	minBalance := activeMinBalance()

	ranked := make([]feedengine.RankedVendor, 0, len(vendors))
	for _, v := range vendors {
		ranked = append(ranked, feedengine.AnnotateVendor(v, location, minBalance))
	}
	feedengine.SortVendors(ranked)

	return &feedInputs{ranked: ranked, products: products, ads: ads}, nil
}

// GetFeed serves the meshed product feed accumulated through the
// requested round. The response always carries the full feed so far so
// the ad cadence runs across round boundaries; asking past the last
// round returns the complete feed with hasMore=false.
func GetFeed(c echo.Context) error {
	round := 0
	if v := c.QueryParam("round"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid round"})
		}
		round = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inputs, err := loadFeedInputs(ctx, c)
	if err != nil {
		logger.Error("failed to load feed inputs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch feed"})
	}

	mesher := feedengine.NewMesher(inputs.ranked, inputs.products)

	for r := 0; r <= round && r < mesher.Rounds(); r++ {
		mesher.LoadRound(r)
	}

	filtered := feedengine.FilterFeed(mesher.Feed(), c.QueryParam("search"))

	entries := feedengine.InjectAds(filtered, feedengine.NewAdCursor(inputs.ads))
	grid := feedengine.GroupForGrid(filtered, feedengine.NewAdCursor(inputs.ads))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Feed fetched successfully",
		"round":   round,
		"hasMore": mesher.HasMore(),
		"feed":    entries,
		"grid":    grid,
	})
}

// GetCategoryFeed serves the category-filtered feed. Unlike the main
// feed this is meshed eagerly in full, no pagination.
func GetCategoryFeed(c echo.Context) error {
	category := c.Param("category")
	if category == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Category is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inputs, err := loadFeedInputs(ctx, c)
	if err != nil {
		logger.Error("failed to load feed inputs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch feed"})
	}

	feed := feedengine.MeshAll(inputs.ranked, inputs.products, category)
	filtered := feedengine.FilterFeed(feed, c.QueryParam("search"))

	entries := feedengine.InjectAds(filtered, feedengine.NewAdCursor(inputs.ads))
	grid := feedengine.GroupForGrid(filtered, feedengine.NewAdCursor(inputs.ads))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Feed fetched successfully",
		"category": category,
		"feed":     entries,
		"grid":     grid,
	})
}
