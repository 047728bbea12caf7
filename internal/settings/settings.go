// Package settings is the shop's key/value configuration, edited by the owner.
package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ariefcatur/go-juice-pos/internal/promptpay"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	KeyPromptPayNumber = "promptpay_number"
	KeyShopName        = "shop_name"
	KeyShopPhone       = "shop_phone"
)

var Keys = []string{KeyPromptPayNumber, KeyShopName, KeyShopPhone}

var ErrUnknownKey = errors.New("unknown setting")

type Repo struct{ DB *pgxpool.Pool }

// Get returns "" for a key that was never set.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.DB.QueryRow(ctx, `SELECT value FROM shop_settings WHERE key = $1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("q.GetSetting[%s]: %w", key, err)
	}
	return v, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	value, err := Validate(key, value)
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO shop_settings(key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("q.SetSetting[%s]: %w", key, err)
	}
	return nil
}

// All returns every known key, unset ones as "".
func (r *Repo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT key, value FROM shop_settings`)
	if err != nil {
		return nil, fmt.Errorf("q.ListSettings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		out[k] = ""
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return out, nil
}

// Validate trims value and checks it fits key. A PromptPay number must be a
// mobile number, national id or e-wallet id; it is stored as given.
func Validate(key, value string) (string, error) {
	if !slices.Contains(Keys, key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	value = strings.TrimSpace(value)
	if key == KeyPromptPayNumber && value != "" {
		if _, err := promptpay.Classify(value); err != nil {
			return "", err
		}
	}
	return value, nil
}
