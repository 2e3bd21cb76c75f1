package storage

import (
	"errors"

	"clipforge/internal/types"

	"gorm.io/gorm"
)

func SaveRun(run *types.HighlightRun) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert keyed on TaskId so progress updates reuse the same row
	var existing types.HighlightRun
	result := DB.Where("task_id = ?", run.TaskId).First(&existing)

	if result.Error == nil {
		run.Id = existing.Id
		return DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(run).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(run).Error
	}
	return result.Error
}

func GetRun(taskId string) (*types.HighlightRun, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var run types.HighlightRun
	if err := DB.Preload("Clips").Where("task_id = ?", taskId).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func RunHistory(limit int) ([]types.HighlightRun, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var runs []types.HighlightRun
	if err := DB.Preload("Clips").Order("create_time desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func DeleteRun(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	var run types.HighlightRun
	if err := DB.Where("task_id = ?", taskId).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := DB.Where("run_id = ?", run.Id).Delete(&types.HighlightClip{}).Error; err != nil {
		return err
	}
	return DB.Delete(&run).Error
}

// MarkStaleRuns flips runs left in processing state by a previous process to
// failed. Called once on startup; returns how many rows were touched.
func MarkStaleRuns() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.HighlightRun{}).
		Where("status = ?", types.RunStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.RunStatusFailed,
			"fail_reason": "interrupted by restart",
		})
	return result.RowsAffected, result.Error
}
