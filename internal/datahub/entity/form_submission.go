package entity

import "time"

// FormSubmission is a raw submission captured by the public forms app.
// The sync job backfills these into the dataset linked to the form.
type FormSubmission struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	FormID      string    `json:"formId" gorm:"size:64;not null;index"`
	Data        JSONB     `json:"data" gorm:"type:jsonb;not null;default:'{}'"`
	Tracking    JSONB     `json:"tracking,omitempty" gorm:"type:jsonb"`
	SubmittedAt time.Time `json:"submittedAt" gorm:"not null"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}
