package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so user search terms
// match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Repositories bundles every DataHub repository.
type Repositories struct {
	Dataset        *DatasetRepository
	Record         *RecordRepository
	APIKey         *APIKeyRepository
	Audit          *AuditRepository
	FormSubmission *FormSubmissionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Dataset:        NewDatasetRepository(db),
		Record:         NewRecordRepository(db),
		APIKey:         NewAPIKeyRepository(db),
		Audit:          NewAuditRepository(db),
		FormSubmission: NewFormSubmissionRepository(db),
	}
}
