package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ariefcatur/go-juice-pos/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const profileColumns = `id, username, password_hash, name, email, phone, role, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, n NewProfile) (Profile, error) {
	if err := n.Normalize(); err != nil {
		return Profile{}, err
	}

	hash, err := HashPassword(n.Password)
	if err != nil {
		return Profile{}, err
	}

	p, err := scanProfile(r.DB.QueryRow(ctx, `
		INSERT INTO profiles(id, username, password_hash, name, email, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+profileColumns,
		uuid.New(), n.Username, hash, n.Name, n.Email, n.Phone, string(n.Role)))
	if err != nil {
		if postgres.IsUniqueViolation(err, "profiles_username_key") {
			return Profile{}, fmt.Errorf("q.CreateProfile[%s]: %w", n.Username, ErrUsernameTaken)
		}
		return Profile{}, fmt.Errorf("q.CreateProfile: %w", err)
	}
	return p, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Profile, error) {
	return r.getBy(ctx, "id", id)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (Profile, error) {
	return r.getBy(ctx, "username", strings.ToLower(strings.TrimSpace(username)))
}

func (r *Repo) getBy(ctx context.Context, column string, v any) (Profile, error) {
	p, err := scanProfile(r.DB.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+column+` = $1`, v))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, fmt.Errorf("q.GetProfile: %w", ErrNotFound)
		}
		return Profile{}, fmt.Errorf("q.GetProfile: %w", err)
	}
	return p, nil
}

// List returns profiles with one of roles, or all when roles is empty.
func (r *Repo) List(ctx context.Context, roles ...Role) ([]Profile, error) {
	var filter []string
	for _, role := range roles {
		filter = append(filter, string(role))
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE $1::text[] IS NULL OR role = ANY($1)
		ORDER BY created_at DESC`, filter)
	if err != nil {
		return nil, fmt.Errorf("q.ListProfiles: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Profile, error) {
		return scanProfile(row)
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, c Changes) (Profile, error) {
	var hash *string
	if c.Password != nil {
		h, err := HashPassword(*c.Password)
		if err != nil {
			return Profile{}, err
		}
		hash = &h
	}

	p, err := scanProfile(r.DB.QueryRow(ctx, `
		UPDATE profiles SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			password_hash = COALESCE($5, password_hash),
			updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		id, trimmed(c.Name), trimmed(c.Email), trimmed(c.Phone), hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, fmt.Errorf("q.UpdateProfile: %w", ErrNotFound)
		}
		return Profile{}, fmt.Errorf("q.UpdateProfile: %w", err)
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("q.DeleteProfile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeleteProfile: %w", ErrNotFound)
	}
	return nil
}

// EnsureOwner creates the owner account on first start. It does nothing
// when an owner already exists.
func (r *Repo) EnsureOwner(ctx context.Context, n NewProfile, log *slog.Logger) error {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE role = 'owner')`).Scan(&exists); err != nil {
		return fmt.Errorf("q.OwnerExists: %w", err)
	}
	if exists {
		return nil
	}

	n.Role = RoleOwner
	p, err := r.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("bootstrap owner: %w", err)
	}

	log.InfoContext(ctx, "owner account created", "username", p.Username, "profile_id", p.ID)
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p    Profile
		role string
	)
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Name, &p.Email, &p.Phone, &role,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.Role = Role(role)
	return p, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
