package cartengine

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RemoteStore keeps an authenticated customer's cart as rows in the
// cart_lines table, one cart per vendor per customer.
type RemoteStore struct {
	pool       *pgxpool.Pool
	customerID string
}

func NewRemoteStore(pool *pgxpool.Pool, customerID string) *RemoteStore {
	return &RemoteStore{pool: pool, customerID: customerID}
}

func (s *RemoteStore) Lines(ctx context.Context, vendor string) (map[string]CartLine, error) {
	query := `
		SELECT item_id, variant_id, name, price, prices, measurement, quantity, stock, image, created_at, updated_at
		FROM cart_lines
		WHERE customer_id = $1 AND vendor_mobile = $2`
	rows, err := s.pool.Query(ctx, query, s.customerID, vendor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[string]CartLine)
	for rows.Next() {
		var line CartLine
		var pricesJSON []byte
		err := rows.Scan(
			&line.ID,
			&line.VariantID,
			&line.Name,
			&line.Price,
			&pricesJSON,
			&line.Measurement,
			&line.Quantity,
			&line.Stock,
			&line.Image,
			&line.CreatedAt,
			&line.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(pricesJSON) > 0 {
			if err := json.Unmarshal(pricesJSON, &line.Prices); err != nil {
				return nil, err
			}
		}
		lines[line.EffectiveCatalogID()] = line
	}
	return lines, rows.Err()
}

func (s *RemoteStore) Put(ctx context.Context, vendor string, line CartLine) error {
	pricesJSON, err := json.Marshal(line.Prices)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cart_lines
			(customer_id, vendor_mobile, line_key, item_id, variant_id, name, price, prices, measurement, quantity, stock, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (customer_id, vendor_mobile, line_key)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err = s.pool.Exec(ctx, query,
		s.customerID, vendor, line.EffectiveCatalogID(),
		line.ID, line.VariantID, line.Name, line.Price, pricesJSON,
		line.Measurement, line.Quantity, line.Stock, line.Image,
		line.CreatedAt, line.UpdatedAt,
	)
	return err
}

func (s *RemoteStore) Delete(ctx context.Context, vendor, lineID string) error {
	query := `DELETE FROM cart_lines WHERE customer_id = $1 AND vendor_mobile = $2 AND line_key = $3`
	_, err := s.pool.Exec(ctx, query, s.customerID, vendor, lineID)
	return err
}
