package models

import (
	"time"

	"gorm.io/datatypes"
)

// Import statuses.
const (
	ImportRunning   = "running"
	ImportCompleted = "completed"
	ImportFailed    = "failed"
)

// ImportFile records one processed snapshot archive.
type ImportFile struct {
	ID         uint           `gorm:"primaryKey;column:id" json:"id"`
	RunID      string         `gorm:"column:run_id;type:varchar(36);uniqueIndex" json:"run_id"`
	FileName   string         `gorm:"column:file_name;type:varchar(255)" json:"file_name"`
	FileDate   time.Time      `gorm:"column:file_date;type:date" json:"file_date"`
	FileSize   int64          `gorm:"column:file_size" json:"file_size"`
	ImportedOn time.Time      `gorm:"column:imported_on" json:"imported_on"`
	Status     string         `gorm:"column:status;type:varchar(16)" json:"status"`
	Summary    datatypes.JSON `gorm:"column:summary" json:"summary"`
	Error      string         `gorm:"column:error;type:text" json:"error,omitempty"`
}

func (ImportFile) TableName() string {
	return "igtfs_files"
}
