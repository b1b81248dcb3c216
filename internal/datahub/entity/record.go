package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Record status. Records are soft-deleted: status transitions, never row
// removal.
const (
	RecordStatusActive   = "active"
	RecordStatusArchived = "archived"
	RecordStatusDeleted  = "deleted"
)

// RecordLocation is the approximate submitter location captured by the form.
type RecordLocation struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

func (l RecordLocation) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *RecordLocation) Scan(value interface{}) error {
	if value == nil {
		*l = RecordLocation{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan RecordLocation: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// RecordMetadata is the submission envelope around a record's data. Embedded
// as flat columns so listings can sort on submitted_at and the sync job can
// match on source_form_submission_id.
type RecordMetadata struct {
	SubmittedAt            time.Time       `json:"submittedAt" gorm:"column:submitted_at;not null;index"`
	SubmittedBy            string          `json:"submittedBy,omitempty" gorm:"column:submitted_by;size:64"`
	SourceFormSubmissionID string          `json:"sourceFormSubmissionId,omitempty" gorm:"column:source_form_submission_id;size:64;index"`
	SourceApplication      string          `json:"sourceApplication" gorm:"column:source_application;size:100"`
	IPAddress              string          `json:"ipAddress,omitempty" gorm:"column:ip_address;size:64"`
	UserAgent              string          `json:"userAgent,omitempty" gorm:"column:user_agent;size:512"`
	DeviceType             string          `json:"deviceType,omitempty" gorm:"column:device_type;size:16"`
	Location               *RecordLocation `json:"location,omitempty" gorm:"column:location;type:jsonb"`
}

// DatasetRecord is one accepted submission. Data keys correspond to schema
// field names, but unknown keys are stored as submitted; values are never
// coerced.
type DatasetRecord struct {
	ID        string         `json:"id" gorm:"primaryKey;size:32"`
	DatasetID string         `json:"datasetId" gorm:"size:32;not null;index"`
	Data      JSONB          `json:"data" gorm:"type:jsonb;not null;default:'{}'"`
	DataHash  string         `json:"-" gorm:"size:20;index"`
	Metadata  RecordMetadata `json:"metadata" gorm:"embedded"`
	Status    string         `json:"status" gorm:"size:16;not null;default:active;index"`
	Version   int            `json:"version" gorm:"not null;default:1"`
}

func (DatasetRecord) TableName() string {
	return "lc_dataset_records"
}
