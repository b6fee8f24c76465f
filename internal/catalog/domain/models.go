package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Title is a catalog entry. StoragePath locates the object behind the CDN;
// the public stream URL is composed at read time and never persisted.
type Title struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string       `gorm:"type:varchar(255);not null"`
	Description string       `gorm:"type:text;not null;default:''"`
	StoragePath string       `gorm:"column:storage_path;type:varchar(1024);not null"`
	CreatedAt   time.Time    `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (Title) TableName() string { return "titles" }
