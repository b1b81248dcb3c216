package entity

import "time"

// Audit actions.
const (
	AuditActionCreate       = "create"
	AuditActionUpdate       = "update"
	AuditActionDelete       = "delete"
	AuditActionExport       = "export"
	AuditActionImport       = "import"
	AuditActionSchemaChange = "schema_change"
)

// DatasetAuditLog records one administrative or ingestion-side action
// against a dataset or one of its records.
type DatasetAuditLog struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	DatasetID   string    `json:"datasetId" gorm:"size:32;not null;index"`
	RecordID    string    `json:"recordId,omitempty" gorm:"size:32"`
	Action      string    `json:"action" gorm:"size:20;not null"`
	PerformedBy string    `json:"performedBy" gorm:"size:64"`
	PerformedAt time.Time `json:"performedAt" gorm:"not null;index"`
	Details     JSONB     `json:"details,omitempty" gorm:"type:jsonb"`
}

func (DatasetAuditLog) TableName() string {
	return "lc_dataset_audit_logs"
}
