package outbox

import (
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
)

const maxDLQErrorLen = 1024

// DLQRepository parks rows the publisher gave up on. Writes always join the
// publisher's batch transaction.
type DLQRepository struct{}

func NewDLQRepository() *DLQRepository {
	return &DLQRepository{}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil && len(*entry.ErrorMessage) > maxDLQErrorLen {
		msg := (*entry.ErrorMessage)[:maxDLQErrorLen]
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}
