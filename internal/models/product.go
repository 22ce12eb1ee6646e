package models

import "time"

type Product struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	SKU         string     `json:"sku"`
	Category    string     `json:"category"`
	Quantity    string     `json:"quantity"`
	Price       string     `json:"price"`
	Description string     `json:"description"`
	Image       *FileInfo  `json:"image,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FileInfo is the stored metadata of an uploaded image.
type FileInfo struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
	FileSize string `json:"file_size"`
}

// UpdateProductRequest carries a partial product update. Nil means the field
// was absent; a present but empty value for a required field also keeps the
// stored value, since required fields may never be blanked.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	SKU         *string `json:"sku,omitempty"`
	Category    *string `json:"category,omitempty"`
	Quantity    *string `json:"quantity,omitempty"`
	Price       *string `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
}
