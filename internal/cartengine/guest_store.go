package cartengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guestCartTTL = 30 * 24 * time.Hour

// GuestStore keeps a guest (or kiosk) cart as one JSON document per
// vendor in redis, keyed guestcart:<guest>:<vendor>. Every write
// publishes a change event on the guest's cart channel so consumers can
// react instead of polling. Writes are read-modify-write and last write
// wins; the model assumes a single active client per guest id.
type GuestStore struct {
	client  *redis.Client
	guestID string
}

func NewGuestStore(client *redis.Client, guestID string) *GuestStore {
	return &GuestStore{client: client, guestID: guestID}
}

// ChangeChannel is the pub/sub channel cart change events are published
// on for the given guest.
func ChangeChannel(guestID string) string {
	return fmt.Sprintf("cart:%s", guestID)
}

func (s *GuestStore) key(vendor string) string {
	return fmt.Sprintf("guestcart:%s:%s", s.guestID, vendor)
}

func (s *GuestStore) Lines(ctx context.Context, vendor string) (map[string]CartLine, error) {
	data, err := s.client.Get(ctx, s.key(vendor)).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]CartLine{}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := make(map[string]CartLine)
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *GuestStore) Put(ctx context.Context, vendor string, line CartLine) error {
	lines, err := s.Lines(ctx, vendor)
	if err != nil {
		return err
	}
	lines[line.EffectiveCatalogID()] = line
	return s.write(ctx, vendor, lines)
}

func (s *GuestStore) Delete(ctx context.Context, vendor, lineID string) error {
	lines, err := s.Lines(ctx, vendor)
	if err != nil {
		return err
	}
	if _, ok := lines[lineID]; !ok {
		return nil
	}
	delete(lines, lineID)

	if len(lines) == 0 {
		if err := s.client.Del(ctx, s.key(vendor)).Err(); err != nil {
			return err
		}
		return s.publish(ctx, vendor)
	}
	return s.write(ctx, vendor, lines)
}

func (s *GuestStore) write(ctx context.Context, vendor string, lines map[string]CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(vendor), data, guestCartTTL).Err(); err != nil {
		return err
	}
	return s.publish(ctx, vendor)
}

func (s *GuestStore) publish(ctx context.Context, vendor string) error {
	return s.client.Publish(ctx, ChangeChannel(s.guestID), vendor).Err()
}
