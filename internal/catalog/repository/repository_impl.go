package repository

import (
	"context"
	"errors"

	catalogdomain "github.com/reelgate/reelgate/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, title *catalogdomain.Title) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO titles (id, name, description, storage_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title.ID,
		title.Name,
		title.Description,
		title.StoragePath,
		title.CreatedAt,
		title.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*catalogdomain.Title, error) {
	var title catalogdomain.Title
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM titles WHERE id = ?`, id).
		First(&title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]catalogdomain.Title, error) {
	var titles []catalogdomain.Title
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM titles ORDER BY created_at DESC, id DESC`).
		Scan(&titles).Error
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, title *catalogdomain.Title) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE titles SET name = ?, description = ?, storage_path = ?, updated_at = ? WHERE id = ?`,
		title.Name,
		title.Description,
		title.StoragePath,
		title.UpdatedAt,
		title.ID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalogdomain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	result := db.WithContext(ctx).Exec(`DELETE FROM titles WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalogdomain.ErrNotFound
	}
	return nil
}
