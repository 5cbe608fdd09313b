package transfer

import (
	"fmt"

	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyBatchSize = 200

// CopyAll migrates the schema on dst and copies every table from src, keeping ids.
// Rows already present in dst are overwritten.
func CopyAll(src, dst *gorm.DB) (Counts, error) {
	if err := db.Migrate(dst); err != nil {
		return Counts{}, fmt.Errorf("migrating target: %w", err)
	}

	var (
		counts Counts
		err    error
	)
	if counts.Journal, err = copyTable[db.JournalPost](src, dst); err != nil {
		return counts, err
	}
	if counts.Events, err = copyTable[db.Event](src, dst); err != nil {
		return counts, err
	}
	if counts.Rituals, err = copyTable[db.Ritual](src, dst); err != nil {
		return counts, err
	}
	if counts.Pages, err = copyTable[db.PageContent](src, dst); err != nil {
		return counts, err
	}
	if counts.StandalonePages, err = copyTable[db.StandalonePage](src, dst); err != nil {
		return counts, err
	}
	return counts, nil
}

func copyTable[T any](src, dst *gorm.DB) (int, error) {
	var (
		rows  []T
		total int
	)
	result := src.FindInBatches(&rows, copyBatchSize, func(_ *gorm.DB, _ int) error {
		if err := dst.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
			return err
		}
		total += len(rows)
		return nil
	})
	if result.Error != nil {
		return total, fmt.Errorf("copying %T: %w", *new(T), result.Error)
	}
	return total, nil
}
