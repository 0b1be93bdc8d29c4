package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"marketplace-search-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrCategoryNotFound = errors.New("store: category not found")
	ErrStateNotFound    = errors.New("store: state not found")
	ErrCityNotFound     = errors.New("store: city not found")
	// ErrUnsupportedFilter marks a structural rejection of a filter shape.
	// The Postgres store recognizes it alongside the driver's own
	// undefined-column errors; fakes return it directly.
	ErrUnsupportedFilter = errors.New("store: unsupported filter shape")
)

// pgUndefinedColumn is the Postgres error code raised when a query references
// a column the schema does not have. Optional legacy text columns (category,
// description) are missing on some deployments, which is exactly the case the
// degrading text-search ladder exists for.
const pgUndefinedColumn = "42703"

// PostgresStore implements the CategoryStorer, LocationStorer, ProductStorer
// and PlanStorer interfaces using PostgreSQL. All operations are reads; this
// service never writes to the backing tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// --- CategoryStorer Implementation ---

func (s *PostgresStore) GetMicroCategoryBySlug(ctx context.Context, slug string) (*domain.MicroCategory, error) {
	query := `
		SELECT id, name, slug, sub_category_id
		FROM micro_categories
		WHERE slug = $1;
	`
	var c domain.MicroCategory
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.SubCategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetMicroCategoryBySlug failed to scan row: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) GetSubCategoryBySlug(ctx context.Context, slug string) (*domain.SubCategory, error) {
	query := `
		SELECT id, name, slug, head_category_id
		FROM sub_categories
		WHERE slug = $1;
	`
	var c domain.SubCategory
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.HeadCategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetSubCategoryBySlug failed to scan row: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) GetHeadCategoryBySlug(ctx context.Context, slug string) (*domain.HeadCategory, error) {
	query := `
		SELECT id, name, slug
		FROM head_categories
		WHERE slug = $1;
	`
	var c domain.HeadCategory
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetHeadCategoryBySlug failed to scan row: %w", err)
	}
	return &c, nil
}

// SearchCategoryCandidates collects slug/name pairs from all three category
// tables whose slug or name contains token. Each table contributes at most
// limit rows; deduplication across sources is the caller's concern.
func (s *PostgresStore) SearchCategoryCandidates(ctx context.Context, token string, limit int) ([]domain.Candidate, error) {
	tables := []string{"micro_categories", "sub_categories", "head_categories"}
	pattern := "%" + token + "%"

	var candidates []domain.Candidate
	for _, table := range tables {
		query := fmt.Sprintf(`
			SELECT slug, name FROM %s
			WHERE slug ILIKE $1 OR name ILIKE $1
			LIMIT $2;
		`, table)
		rows, err := s.db.QueryContext(ctx, query, pattern, limit)
		if err != nil {
			return nil, fmt.Errorf("store: SearchCategoryCandidates failed to query %s: %w", table, err)
		}
		for rows.Next() {
			var c domain.Candidate
			if err := rows.Scan(&c.Slug, &c.Name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: SearchCategoryCandidates failed to scan %s row: %w", table, err)
			}
			candidates = append(candidates, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: SearchCategoryCandidates iteration error on %s: %w", table, err)
		}
		rows.Close()
	}
	return candidates, nil
}

// --- LocationStorer Implementation ---

func (s *PostgresStore) ListStates(ctx context.Context) ([]domain.State, error) {
	query := `SELECT id, name, slug FROM states ORDER BY id ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListStates failed to query states: %w", err)
	}
	defer rows.Close()

	var states []domain.State
	for rows.Next() {
		var st domain.State
		if err := rows.Scan(&st.ID, &st.Name, &st.Slug); err != nil {
			return nil, fmt.Errorf("store: ListStates failed to scan state row: %w", err)
		}
		states = append(states, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListStates iteration error: %w", err)
	}
	return states, nil
}

func (s *PostgresStore) ListCities(ctx context.Context) ([]domain.City, error) {
	query := `SELECT id, name, slug, state_id FROM cities ORDER BY id ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListCities failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.StateID); err != nil {
			return nil, fmt.Errorf("store: ListCities failed to scan city row: %w", err)
		}
		cities = append(cities, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListCities iteration error: %w", err)
	}
	return cities, nil
}

// --- ProductStorer Implementation ---

// productSelect builds the column list and join for product reads. Vendor
// rows are joined inner (an orphaned product is unservable); the vendor's
// state/city names are joined left since either may be null. The optional
// description column only appears when the caller's filter already depends
// on it; every narrower query selects a NULL placeholder in its slot, so a
// schema without the column can still serve the query.
func productSelect(withDescription bool) string {
	descriptionColumn := "NULL"
	if withDescription {
		descriptionColumn = "p.description"
	}
	return fmt.Sprintf(`
	SELECT p.id, p.name, p.status, %s, p.category_slug,
	       p.micro_category_id, p.sub_category_id, p.head_category_id,
	       p.price, p.target_locations, p.vendor_id, p.in_stock, p.created_at,
	       v.name, v.state_id, v.city_id, st.name, ct.name,
	       v.is_active, v.is_verified, v.rating
	FROM products p
	JOIN vendors v ON v.id = p.vendor_id
	LEFT JOIN states st ON st.id = v.state_id
	LEFT JOIN cities ct ON ct.id = v.city_id
`, descriptionColumn)
}

// categoryColumns maps a resolved context kind to the product hierarchy
// column it filters on.
var categoryColumns = map[domain.ContextKind]string{
	domain.ContextMicro: "p.micro_category_id",
	domain.ContextSub:   "p.sub_category_id",
	domain.ContextHead:  "p.head_category_id",
}

func (s *PostgresStore) ListProductsByCategory(ctx context.Context, kind domain.ContextKind, categoryID int64, limit int) ([]domain.Product, error) {
	column, ok := categoryColumns[kind]
	if !ok {
		return nil, fmt.Errorf("store: ListProductsByCategory: no category column for kind %q", kind)
	}

	query := fmt.Sprintf(`%s
		WHERE p.status = $1 AND v.is_active = TRUE AND %s = $2
		ORDER BY p.created_at DESC
		LIMIT $3;
	`, productSelect(false), column)

	rows, err := s.db.QueryContext(ctx, query, domain.ProductStatusActive, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductsByCategory failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, "ListProductsByCategory")
}

func (s *PostgresStore) ListProductsByText(ctx context.Context, strategy TextFilterStrategy, slug, phrase string, limit int) ([]domain.Product, error) {
	clauses := "p.category_slug = $2"
	args := []interface{}{domain.ProductStatusActive, slug}
	argID := 3

	addLike := func(column string) {
		clauses += fmt.Sprintf(" OR %s ILIKE $%d", column, argID)
		args = append(args, "%"+phrase+"%")
		argID++
	}

	switch strategy {
	case FilterSlugNameCategoryDescription:
		addLike("p.name")
		addLike("p.category")
		addLike("p.description")
	case FilterSlugNameCategory:
		addLike("p.name")
		addLike("p.category")
	case FilterSlugName:
		addLike("p.name")
	case FilterSlugOnly:
		// slug equality alone
	default:
		return nil, fmt.Errorf("store: ListProductsByText: unknown strategy %d", strategy)
	}

	query := fmt.Sprintf(`%s
		WHERE p.status = $1 AND v.is_active = TRUE AND (%s)
		ORDER BY p.created_at DESC
		LIMIT $%d;
	`, productSelect(strategy == FilterSlugNameCategoryDescription), clauses, argID)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductsByText failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, "ListProductsByText")
}

// IsUnsupportedFilter reports whether err means the query shape itself was
// rejected (missing optional column) rather than the query failing for an
// operational reason. Only the former justifies retrying a narrower strategy.
func (s *PostgresStore) IsUnsupportedFilter(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupportedFilter) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUndefinedColumn
}

// SearchProductCandidates returns slug/name pairs of ACTIVE products matching
// token. The legacy free-text category column may not exist, so the wider
// filter degrades once before giving up.
func (s *PostgresStore) SearchProductCandidates(ctx context.Context, token string, limit int) ([]domain.Candidate, error) {
	pattern := "%" + token + "%"

	withCategory := `
		SELECT p.category_slug, p.name FROM products p
		WHERE p.status = $1 AND (p.category_slug ILIKE $2 OR p.category ILIKE $2 OR p.name ILIKE $2)
		LIMIT $3;
	`
	candidates, err := s.queryProductCandidates(ctx, withCategory, pattern, limit)
	if err == nil {
		return candidates, nil
	}
	if !s.IsUnsupportedFilter(err) {
		return nil, err
	}

	withoutCategory := `
		SELECT p.category_slug, p.name FROM products p
		WHERE p.status = $1 AND (p.category_slug ILIKE $2 OR p.name ILIKE $2)
		LIMIT $3;
	`
	return s.queryProductCandidates(ctx, withoutCategory, pattern, limit)
}

func (s *PostgresStore) queryProductCandidates(ctx context.Context, query, pattern string, limit int) ([]domain.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, domain.ProductStatusActive, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("store: SearchProductCandidates failed to query products: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.Slug, &c.Name); err != nil {
			return nil, fmt.Errorf("store: SearchProductCandidates failed to scan row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: SearchProductCandidates iteration error: %w", err)
	}
	return candidates, nil
}

// --- PlanStorer Implementation ---

// GetVendorPlanNames joins vendor -> active subscription -> plan name.
// Some deployments still carry the misspelled legacy subscription table, so
// a failed primary lookup retries against it before giving up.
func (s *PostgresStore) GetVendorPlanNames(ctx context.Context, vendorIDs []int64) (map[int64]string, error) {
	if len(vendorIDs) == 0 {
		return map[int64]string{}, nil
	}

	names, err := s.queryPlanNames(ctx, "vendor_plan_subscriptions", vendorIDs)
	if err == nil {
		return names, nil
	}
	log.Printf("WARN: primary plan subscription lookup failed, trying legacy table: %v", err)

	names, legacyErr := s.queryPlanNames(ctx, "vendor_plan_subcriptions", vendorIDs)
	if legacyErr != nil {
		return nil, fmt.Errorf("store: GetVendorPlanNames failed on primary and legacy tables: %w", legacyErr)
	}
	return names, nil
}

func (s *PostgresStore) queryPlanNames(ctx context.Context, table string, vendorIDs []int64) (map[int64]string, error) {
	query := fmt.Sprintf(`
		SELECT sub.vendor_id, pl.name
		FROM %s sub
		JOIN plans pl ON pl.id = sub.plan_id
		WHERE sub.is_active = TRUE AND sub.vendor_id = ANY($1);
	`, table)

	rows, err := s.db.QueryContext(ctx, query, pq.Array(vendorIDs))
	if err != nil {
		return nil, fmt.Errorf("store: queryPlanNames failed to query %s: %w", table, err)
	}
	defer rows.Close()

	names := make(map[int64]string, len(vendorIDs))
	for rows.Next() {
		var vendorID int64
		var planName string
		if err := rows.Scan(&vendorID, &planName); err != nil {
			return nil, fmt.Errorf("store: queryPlanNames failed to scan row: %w", err)
		}
		names[vendorID] = planName
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: queryPlanNames iteration error: %w", err)
	}
	return names, nil
}

// --- Row helpers ---

func collectProducts(rows *sql.Rows, op string) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("store: %s failed to scan product row: %w", op, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %s iteration error: %w", op, err)
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var (
		p               domain.Product
		description     sql.NullString
		price           sql.NullString
		targetLocations []byte
		inStock         sql.NullBool
		microID, subID  sql.NullInt64
		headID          sql.NullInt64
		vStateID        sql.NullInt64
		vCityID         sql.NullInt64
		vStateName      sql.NullString
		vCityName       sql.NullString
		vRating         sql.NullFloat64
	)

	err := rows.Scan(
		&p.ID, &p.Name, &p.Status, &description, &p.CategorySlug,
		&microID, &subID, &headID,
		&price, &targetLocations, &p.VendorID, &inStock, &p.CreatedAt,
		&p.Vendor.Name, &vStateID, &vCityID, &vStateName, &vCityName,
		&p.Vendor.IsActive, &p.Vendor.IsVerified, &vRating,
	)
	if err != nil {
		return domain.Product{}, err
	}

	if description.Valid {
		p.Description = &description.String
	}
	if price.Valid {
		p.Price = price.String
	}
	p.TargetLocations = targetLocations
	p.InStock = inStock.Valid && inStock.Bool
	if microID.Valid {
		p.MicroCategoryID = &microID.Int64
	}
	if subID.Valid {
		p.SubCategoryID = &subID.Int64
	}
	if headID.Valid {
		p.HeadCategoryID = &headID.Int64
	}
	p.Vendor.ID = p.VendorID
	if vStateID.Valid {
		p.Vendor.StateID = &vStateID.Int64
	}
	if vCityID.Valid {
		p.Vendor.CityID = &vCityID.Int64
	}
	if vStateName.Valid {
		p.Vendor.StateName = vStateName.String
	}
	if vCityName.Valid {
		p.Vendor.CityName = vCityName.String
	}
	if vRating.Valid {
		p.Vendor.Rating = vRating.Float64
	}
	return p, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}
