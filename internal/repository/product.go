package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"stockroom/internal/logger"
	"stockroom/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, user_id, name, sku, category, quantity, price, description,
	image_name, image_path, image_type, image_size, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p                                      models.Product
		imageName, imagePath, imageType, imageSize *string
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.SKU,
		&p.Category,
		&p.Quantity,
		&p.Price,
		&p.Description,
		&imageName,
		&imagePath,
		&imageType,
		&imageSize,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if imagePath != nil {
		p.Image = &models.FileInfo{
			FileName: deref(imageName),
			FilePath: *imagePath,
			FileType: deref(imageType),
			FileSize: deref(imageSize),
		}
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	logger.Log.Debug("creating product (repo)", zap.Int64("user_id", p.UserID), zap.String("name", p.Name))
	query := `
	INSERT INTO products (user_id, name, sku, category, quantity, price, description,
		image_name, image_path, image_type, image_size)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, created_at, updated_at`

	var imageName, imagePath, imageType, imageSize *string
	if p.Image != nil {
		imageName = &p.Image.FileName
		imagePath = &p.Image.FilePath
		imageType = &p.Image.FileType
		imageSize = &p.Image.FileSize
	}

	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Name, p.SKU, p.Category, p.Quantity, p.Price, p.Description,
		imageName, imagePath, imageType, imageSize,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.Log.Error("create product failed (repo)", zap.Error(err))
	}
	return err
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListByOwner returns the owner's products, newest first.
func (r *ProductRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		logger.Log.Error("list products failed (repo)", zap.Error(err), zap.Int64("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateFields writes only the fields present in the request; image is
// replaced only when a new one is given.
func (r *ProductRepository) UpdateFields(ctx context.Context, id int64, input *models.UpdateProductRequest, image *models.FileInfo) error {
	sets := []string{}
	args := []interface{}{id}

	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, strings.TrimSpace(*v))
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	add("name", input.Name)
	add("sku", input.SKU)
	add("category", input.Category)
	add("quantity", input.Quantity)
	add("price", input.Price)
	add("description", input.Description)

	if image != nil {
		add("image_name", &image.FileName)
		add("image_path", &image.FilePath)
		add("image_type", &image.FileType)
		add("image_size", &image.FileSize)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Log.Error("update product failed (repo)", zap.Error(err), zap.Int64("product_id", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("delete product failed (repo)", zap.Error(err), zap.Int64("product_id", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
