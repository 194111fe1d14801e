package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	config "kiranakart/config/database"
	"kiranakart/internal/vendorHandler/models"
	"kiranakart/utils"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

// RegisterVendor handles vendor registration. The 10-digit mobile number
// is the vendor's identity everywhere else in the system.
func RegisterVendor(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid Request"})
	}

	if req.MobileNumber == "" || req.BusinessName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "All fields are required"})
	}

	if !utils.ValidateMobile(req.MobileNumber) {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid mobile number"})
	}
	if !utils.ValidateEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid email format"})
	}

	email := strings.ToLower(req.Email)

	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Password must be at least 8 characters long"})
	}

	hashPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO vendors (mobile_number, business_name, owner_name, email, password, service_areas, delivery_charge, free_delivery_above, balance, average_rating, rating_count, is_disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, '[]', 0, 0, 0, 0, 0, FALSE, NOW())`
	_, err = config.Pool.Exec(ctx, query, req.MobileNumber, req.BusinessName, req.OwnerName, email, string(hashPassword))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Mobile number already registered"})
		}
		log.Printf("PostgreSQL error: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to register vendor"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":       fmt.Sprintf("Vendor %s registered successfully", req.BusinessName),
		"mobile_number": req.MobileNumber,
	})
}

// LoginVendor handles vendor login
func LoginVendor(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid Request"})
	}

	var vendor models.Vendor
	query := `SELECT mobile_number, business_name, owner_name, email, password FROM vendors WHERE mobile_number = $1`
	err := config.Pool.QueryRow(context.Background(), query, req.MobileNumber).Scan(
		&vendor.MobileNumber, &vendor.BusinessName, &vendor.OwnerName, &vendor.Email, &vendor.Password,
	)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid mobile number or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(vendor.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid mobile number or password"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"vendor_mobile": vendor.MobileNumber,
		"business_name": vendor.BusinessName,
		"email":         vendor.Email,
		"exp":           jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to generate token"})
	}

	return c.JSON(http.StatusOK, models.LoginResponse{
		Token:        tokenString,
		BusinessName: vendor.BusinessName,
		MobileNumber: vendor.MobileNumber,
	})
}

// vendorClaims pulls the vendor identity out of the verified token.
func vendorClaims(c echo.Context) (mobile, businessName string, err error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return "", "", errors.New("missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid claims")
	}
	mobile, _ = claims["vendor_mobile"].(string)
	businessName, _ = claims["business_name"].(string)
	if mobile == "" {
		return "", "", errors.New("not a vendor token")
	}
	return mobile, businessName, nil
}
