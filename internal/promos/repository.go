package promos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promohub/backend/internal/models"
)

const promoColumns = `id, company_id, company_name, mode, COALESCE(promo_common, ''),
	COALESCE(promo_unique, '[]'::jsonb), description, COALESCE(image_url, ''), target, max_count,
	active_from, active_until, active, like_count, comment_count, used_count, created`

// SortBy selects the catalog listing order.
type SortBy string

const (
	SortByCreated     SortBy = "created"
	SortByActiveFrom  SortBy = "active_from"
	SortByActiveUntil SortBy = "active_until"
)

// Repository handles promo code persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a promo repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPromo(row pgx.Row) (*models.PromoCode, error) {
	var p models.PromoCode
	err := row.Scan(&p.ID, &p.CompanyID, &p.CompanyName, &p.Mode, &p.PromoCommon,
		&p.PromoUnique, &p.Description, &p.ImageURL, &p.Target, &p.MaxCount,
		&p.ActiveFrom, &p.ActiveUntil, &p.Active, &p.LikeCount, &p.CommentCount, &p.UsedCount, &p.Created)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a promo and seeds its statistics row with the target country
// (or the UNKNOWN bucket) in one transaction.
func (r *Repository) Create(ctx context.Context, p *models.PromoCode) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO promo_codes
		(company_id, company_name, mode, promo_common, promo_unique, description, image_url, target, max_count, active_from, active_until, active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12)
		RETURNING id, created`
	var uniquePool interface{}
	if p.Mode == models.PromoModeUnique {
		uniquePool = p.PromoUnique
	}
	err = tx.QueryRow(ctx, q, p.CompanyID, p.CompanyName, p.Mode, p.PromoCommon, uniquePool,
		p.Description, p.ImageURL, p.Target, p.MaxCount, p.ActiveFrom, p.ActiveUntil, p.Active).
		Scan(&p.ID, &p.Created)
	if err != nil {
		return fmt.Errorf("insert promo: %w", err)
	}

	country := models.CountryUnknown
	if p.Target.Country != "" {
		country = strings.ToUpper(p.Target.Country)
	}
	const statQ = `INSERT INTO promo_statistics (promo_id, country, activations_count) VALUES ($1, $2, 0)`
	if _, err := tx.Exec(ctx, statQ, p.ID, country); err != nil {
		return fmt.Errorf("seed statistics: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID returns a promo by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	q := `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`
	return scanPromo(r.pool.QueryRow(ctx, q, id))
}

// ListByCompany returns the company's promos plus the filtered-but-unpaginated
// total. Country codes are matched lower-cased against the target; rows with
// no country target always match. Sort orders are descending.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID, countries []string, sortBy SortBy, limit, offset int) ([]models.PromoCode, int, error) {
	where := ` FROM promo_codes WHERE company_id = $1`
	args := []interface{}{companyID}
	if len(countries) > 0 {
		where += ` AND (LOWER(target->>'country') = ANY($2) OR target->>'country' IS NULL)`
		args = append(args, countries)
	}

	var order string
	switch sortBy {
	case SortByActiveFrom:
		order = ` ORDER BY active_from DESC NULLS LAST`
	case SortByActiveUntil:
		order = ` ORDER BY active_until DESC NULLS FIRST`
	default:
		order = ` ORDER BY seq DESC`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promos: %w", err)
	}

	q := `SELECT ` + promoColumns + where + order +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var list []models.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *p)
	}
	return list, total, rows.Err()
}

// ListAll returns the whole catalog in insertion order, optionally filtered by
// active flag equality. The feed engine reverses this to get newest-first.
func (r *Repository) ListAll(ctx context.Context, active *bool) ([]models.PromoCode, error) {
	q := `SELECT ` + promoColumns + ` FROM promo_codes`
	var args []interface{}
	if active != nil {
		q += ` WHERE active = $1`
		args = append(args, *active)
	}
	q += ` ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var list []models.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Update persists the promo's mutable fields.
func (r *Repository) Update(ctx context.Context, p *models.PromoCode) error {
	const q = `UPDATE promo_codes SET description = $1, image_url = NULLIF($2, ''), target = $3,
		max_count = $4, active_from = $5, active_until = $6, active = $7 WHERE id = $8`
	_, err := r.pool.Exec(ctx, q, p.Description, p.ImageURL, p.Target, p.MaxCount,
		p.ActiveFrom, p.ActiveUntil, p.Active, p.ID)
	return err
}

// SetActive updates only the derived active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE promo_codes SET active = $1 WHERE id = $2`, active, id)
	return err
}

// SetImageURL updates only the promo image URL.
func (r *Repository) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE promo_codes SET image_url = NULLIF($1, '') WHERE id = $2`, url, id)
	return err
}

// Statistics returns per-country activation counters for a promo.
func (r *Repository) Statistics(ctx context.Context, promoID uuid.UUID) ([]models.CountryStat, error) {
	const q = `SELECT country, activations_count FROM promo_statistics WHERE promo_id = $1 ORDER BY country`
	rows, err := r.pool.Query(ctx, q, promoID)
	if err != nil {
		return nil, fmt.Errorf("promo statistics: %w", err)
	}
	defer rows.Close()

	var stats []models.CountryStat
	for rows.Next() {
		var s models.CountryStat
		if err := rows.Scan(&s.Country, &s.ActivationsCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
