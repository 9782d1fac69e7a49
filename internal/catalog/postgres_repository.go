package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `p.id, p.category_id, c.name, p.name, p.description,
       p.price, p.image_url, p.stock_status, p.is_featured, p.created_at, p.updated_at`

func (r *PostgresRepository) ListProducts(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id`

	var (
		conds []string
		args  []interface{}
	)
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conds = append(conds, "p.category_id = $"+strconv.Itoa(len(args)))
	}
	if filter.InStockOnly {
		args = append(args, domain.StockStatusInStock)
		conds = append(conds, "p.stock_status = $"+strconv.Itoa(len(args)))
	}
	if filter.FeaturedOnly {
		conds = append(conds, "p.is_featured = TRUE")
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	query := `SELECT ` + productColumns + `
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id
	          WHERE p.id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to query product: %w", err)
	}

	products := []domain.Product{p}
	if err := r.attachImages(ctx, products); err != nil {
		return domain.Product{}, err
	}
	return products[0], nil
}

// SearchProducts pattern-matches name and description, mirroring the
// storefront search box.
func (r *PostgresRepository) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"

	q := `SELECT ` + productColumns + `
	      FROM products p
	      LEFT JOIN categories c ON c.id = p.category_id
	      WHERE p.name ILIKE $1 OR p.description ILIKE $1
	      ORDER BY p.created_at DESC
	      LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// attachImages loads the image rows for the given products in one query and
// assigns them in position order.
func (r *PostgresRepository) attachImages(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, image_url, position
		 FROM product_images
		 WHERE product_id = ANY($1)
		 ORDER BY product_id, position`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			img       domain.ProductImage
			productID string
		)
		if err := rows.Scan(&img.ID, &productID, &img.ImageURL, &img.Position); err != nil {
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p            domain.Product
		categoryID   sql.NullString
		categoryName sql.NullString
		description  sql.NullString
		imageURL     sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&categoryID,
		&categoryName,
		&p.Name,
		&description,
		&p.Price,
		&imageURL,
		&p.StockStatus,
		&p.IsFeatured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.CategoryID = categoryID.String
	p.CategoryName = categoryName.String
	p.Description = description.String
	p.ImageURL = imageURL.String
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}
