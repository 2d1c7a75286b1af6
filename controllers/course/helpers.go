package controllers

import (
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"

	"gorm.io/gorm"
)

func findModule(db *gorm.DB, moduleID uint) (courseModels.Module, error) {
	var module courseModels.Module
	err := db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error
	return module, err
}

// ensureModuleAccess returns services.ErrModuleLocked when the user may not open the module.
func ensureModuleAccess(db *gorm.DB, user models.User, module courseModels.Module) error {
	ok, err := services.HasModuleAccess(db, user, module)
	if err != nil {
		return err
	}
	if !ok {
		return services.ErrModuleLocked
	}
	return nil
}

// nextOrderIndex returns max(order_index)+1 over the live rows matching the scope.
func nextOrderIndex(db *gorm.DB, model interface{}, column string, id uint) (int, error) {
	var maxOrder int
	err := db.Model(model).Where(column+" = ? AND is_deleted = ?", id, false).
		Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder).Error
	return maxOrder + 1, err
}

// softDeleteModules flags the modules and everything they contain as deleted.
func softDeleteModules(tx *gorm.DB, moduleIDs []uint) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	if err := tx.Model(&courseModels.Module{}).Where("id IN ?", moduleIDs).Update("is_deleted", true).Error; err != nil {
		return err
	}
	for _, model := range []interface{}{&courseModels.Lesson{}, &courseModels.Quiz{}, &courseModels.Project{}} {
		if err := tx.Model(model).Where("module_id IN ?", moduleIDs).Update("is_deleted", true).Error; err != nil {
			return err
		}
	}
	return tx.Unscoped().Where("module_id IN ?", moduleIDs).Delete(&models.GroupModule{}).Error
}
