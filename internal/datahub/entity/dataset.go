package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB is a schemaless document column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// JSONBArray is a JSONB-backed ordered list.
type JSONBArray []interface{}

func (j JSONBArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONBArray: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// FieldValidation carries the optional per-field constraints. Numeric bounds
// apply to number fields, length bounds to string values, pattern and enum to
// any value.
type FieldValidation struct {
	Min       *float64      `json:"min,omitempty"`
	Max       *float64      `json:"max,omitempty"`
	Pattern   string        `json:"pattern,omitempty"`
	Enum      []interface{} `json:"enum,omitempty"`
	MinLength *int          `json:"minLength,omitempty"`
	MaxLength *int          `json:"maxLength,omitempty"`
}

// DatasetField describes one logical column of a dataset. Name is the data
// key and must be unique within a schema; Label is display-only and is what
// validation errors quote.
type DatasetField struct {
	Name       string           `json:"name"`
	Label      string           `json:"label"`
	Type       string           `json:"type"`
	Required   bool             `json:"required"`
	Unique     bool             `json:"unique,omitempty"`
	Indexed    bool             `json:"indexed,omitempty"`
	Validation *FieldValidation `json:"validation,omitempty"`
	Options    []string         `json:"options,omitempty"` // select, radio, checkbox
}

// DatasetSchema is the ordered list of typed fields a dataset validates
// submissions against. Stored as a single JSONB document; existing records
// are never re-validated when it changes.
type DatasetSchema struct {
	Fields     []DatasetField `json:"fields"`
	Version    string         `json:"version"`
	PrimaryKey string         `json:"primaryKey,omitempty"`
}

func (s DatasetSchema) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *DatasetSchema) Scan(value interface{}) error {
	if value == nil {
		*s = DatasetSchema{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan DatasetSchema: %v", value)
	}
	return json.Unmarshal(bytes, s)
}

// DatasetMetadata holds the aggregate counters and display categorization.
// Embedded as real columns so the record-count bump can be a single UPDATE.
type DatasetMetadata struct {
	RecordCount  int64      `json:"recordCount" gorm:"column:record_count;not null;default:0"`
	LastRecordAt *time.Time `json:"lastRecordAt,omitempty" gorm:"column:last_record_at"`
	Tags         JSONBArray `json:"tags" gorm:"column:tags;type:jsonb;default:'[]'"`
	Category     string     `json:"category" gorm:"column:category;size:50;default:general"`
	IsPublic     bool       `json:"isPublic" gorm:"column:is_public;default:false"`
}

// DatasetPermissions lists who may manage, edit and view a dataset.
type DatasetPermissions struct {
	Owners     []string `json:"owners"`
	Editors    []string `json:"editors"`
	Viewers    []string `json:"viewers"`
	PublicRead bool     `json:"publicRead"`
}

func (p DatasetPermissions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *DatasetPermissions) Scan(value interface{}) error {
	if value == nil {
		*p = DatasetPermissions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan DatasetPermissions: %v", value)
	}
	return json.Unmarshal(bytes, p)
}

// DatasetIntegration links a dataset to the public form that feeds it.
type DatasetIntegration struct {
	SourceFormID string `json:"sourceFormId,omitempty"`
	APIKey       string `json:"apiKey,omitempty"`
	WebhookURL   string `json:"webhookUrl,omitempty"`
	AutoSync     bool   `json:"autoSync,omitempty"`
}

func (i DatasetIntegration) Value() (driver.Value, error) {
	return json.Marshal(i)
}

func (i *DatasetIntegration) Scan(value interface{}) error {
	if value == nil {
		*i = DatasetIntegration{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan DatasetIntegration: %v", value)
	}
	return json.Unmarshal(bytes, i)
}

// Dataset is a named, schema-governed collection of records, typically fed
// by one public form. JSON tags follow the existing DataHub wire contract
// (camelCase), which the admin frontend and stored documents already use.
type Dataset struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	Name              string    `json:"name" gorm:"size:200;not null"`
	Description       string    `json:"description" gorm:"type:text"`
	SourceApplication string    `json:"sourceApplication" gorm:"size:100;not null"`
	OrganizationID    string    `json:"organizationId" gorm:"size:64;not null;index"`
	CreatedBy         string    `json:"createdBy" gorm:"size:64;not null"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	Schema      DatasetSchema      `json:"schema" gorm:"type:jsonb;not null"`
	Metadata    DatasetMetadata    `json:"metadata" gorm:"embedded"`
	Permissions DatasetPermissions `json:"permissions" gorm:"type:jsonb"`
	Integration DatasetIntegration `json:"integration" gorm:"type:jsonb"`

	DisplaySettings JSONB `json:"displaySettings,omitempty" gorm:"type:jsonb"`
}

func (Dataset) TableName() string {
	return "lc_datasets"
}
