// Package blockinstance provides CRUD operations for blocks placed on course pages.
//
// Each instance row pins one block type to one course and carries the JSON
// override blob the course teacher configured. Instances are addressed by
// their public UUID in settings URLs and by (course, type) everywhere else.
package blockinstance

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
)

const (
	courseTypeQueryPattern = "course_id = ? AND block_type = ?"
	publicIDQueryPattern   = "public_id = ?"
)

var (
	// ErrInstanceNotFound is returned when a block instance is not found.
	ErrInstanceNotFound = errors.New("block instance not found")
	// ErrBlockTypeEmpty is returned when attempting to create an instance with an empty block type.
	ErrBlockTypeEmpty = errors.New("block type cannot be empty")
	// ErrInstanceAlreadyExists is returned when the course already carries an instance of the block type.
	ErrInstanceAlreadyExists = errors.New("block instance already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByCourse retrieves the instance of one block type on a course page.
func GetByCourse(db *gorm.DB, courseID uint64, blockType string) (*models.BlockInstance, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if blockType == "" {
		return nil, ErrBlockTypeEmpty
	}

	var instance models.BlockInstance
	result := db.Where(courseTypeQueryPattern, courseID, blockType).First(&instance)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, result.Error
	}

	return &instance, nil
}

// GetByPublicID retrieves a block instance by its public UUID.
func GetByPublicID(db *gorm.DB, publicID string) (*models.BlockInstance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var instance models.BlockInstance
	result := db.Where(publicIDQueryPattern, publicID).First(&instance)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, result.Error
	}

	return &instance, nil
}

// ListByCourse retrieves all block instances of a course page, ordered by
// region and weight.
func ListByCourse(db *gorm.DB, courseID uint64) ([]models.BlockInstance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var instances []models.BlockInstance
	result := db.Where("course_id = ?", courseID).Order("region, weight").Find(&instances)
	if result.Error != nil {
		return nil, result.Error
	}

	return instances, nil
}

// Create places a new block on a course page. The public UUID is assigned
// here so callers never hand out database IDs.
func Create(db *gorm.DB, courseID uint64, blockType string) (*models.BlockInstance, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if blockType == "" {
		return nil, ErrBlockTypeEmpty
	}

	// One instance of each block type per course
	var existing models.BlockInstance
	result := db.Where(courseTypeQueryPattern, courseID, blockType).First(&existing)
	if result.Error == nil {
		return nil, ErrInstanceAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	instance := &models.BlockInstance{
		PublicID:  uuid.NewString(),
		CourseID:  courseID,
		BlockType: blockType,
		Region:    "side",
		Visible:   true,
	}

	result = db.Create(instance)
	if result.Error != nil {
		return nil, result.Error
	}

	return instance, nil
}

// SaveConfig replaces the override blob of a block instance.
func SaveConfig(db *gorm.DB, id uint64, config []byte) (*models.BlockInstance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var instance models.BlockInstance
	result := db.First(&instance, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, result.Error
	}

	instance.Config = config
	result = db.Save(&instance)
	if result.Error != nil {
		return nil, result.Error
	}

	return &instance, nil
}

// Delete removes a block from its course page.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.BlockInstance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInstanceNotFound
	}

	return nil
}
