package entity

import "time"

// DatasetAPIKey authorizes external applications to read or write one
// dataset's records. Keys look like "lc_" + 32 alphanumeric characters.
type DatasetAPIKey struct {
	ID         string     `json:"id" gorm:"primaryKey;size:32"`
	DatasetID  string     `json:"datasetId" gorm:"size:32;not null;index"`
	Name       string     `json:"name" gorm:"size:100;not null"`
	Key        string     `json:"key" gorm:"size:64;uniqueIndex;not null"`
	CreatedBy  string     `json:"createdBy" gorm:"size:64;not null"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CanRead    bool       `json:"canRead" gorm:"default:true"`
	CanWrite   bool       `json:"canWrite" gorm:"default:false"`
	CanDelete  bool       `json:"canDelete" gorm:"default:false"`
	RateLimit  int        `json:"rateLimit,omitempty"` // requests per minute, 0 = unlimited
	IsActive   bool       `json:"isActive" gorm:"default:true"`
}

func (DatasetAPIKey) TableName() string {
	return "lc_dataset_api_keys"
}
