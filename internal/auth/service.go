package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
)

// Service provides authentication and authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// IsSiteAdmin reports whether the user is a platform administrator.
func (s *Service) IsSiteAdmin(userID uint64) (bool, error) {
	var count int64

	err := s.db.Model(&models.User{}).
		Where("id = ? AND site_admin = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check site admin flag: %w", err)
	}

	return count > 0, nil
}

// CourseRole returns the role the user holds in the course. Users without an
// enrolment get the empty role.
func (s *Service) CourseRole(userID, courseID uint64) (models.CourseRole, error) {
	var enrolment models.Enrolment

	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrolment).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to query enrolment: %w", err)
	}

	return enrolment.Role, nil
}

// HasCapability checks if a user holds a capability inside one course.
// Site admins hold everything; everyone else derives capabilities from
// their enrolment role.
func (s *Service) HasCapability(userID, courseID uint64, capability string) (bool, error) {
	isAdmin, err := s.IsSiteAdmin(userID)
	if err != nil {
		return false, err
	}

	if isAdmin {
		return true, nil
	}

	role, err := s.CourseRole(userID, courseID)
	if err != nil {
		return false, err
	}

	if role == "" {
		return false, nil
	}

	return roleGrants(role, capability), nil
}

// HasSiteCapability checks a capability outside any course scope. Only site
// admins hold site capabilities.
func (s *Service) HasSiteCapability(userID uint64, capability string) (bool, error) {
	_ = capability // every site capability is admin-only today

	return s.IsSiteAdmin(userID)
}

// CourseCapabilities retrieves all capabilities the user holds in the course.
func (s *Service) CourseCapabilities(userID, courseID uint64) ([]string, error) {
	isAdmin, err := s.IsSiteAdmin(userID)
	if err != nil {
		return nil, err
	}

	if isAdmin {
		all := make([]string, 0, len(roleCapabilities[models.CourseRoleTeacher])+1)
		all = append(all, roleCapabilities[models.CourseRoleTeacher]...)
		all = append(all, CapSiteConfig)

		return all, nil
	}

	role, err := s.CourseRole(userID, courseID)
	if err != nil {
		return nil, err
	}

	if role == "" {
		return nil, nil
	}

	capabilities := make([]string, len(roleCapabilities[role]))
	copy(capabilities, roleCapabilities[role])

	return capabilities, nil
}

// EnrolledCourseIDs retrieves the IDs of all courses the user is enrolled in.
func (s *Service) EnrolledCourseIDs(userID uint64) ([]uint64, error) {
	var courseIDs []uint64

	err := s.db.Model(&models.Enrolment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &courseIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}

	return courseIDs, nil
}

// Enrol adds or updates the user's enrolment in a course.
func (s *Service) Enrol(userID, courseID uint64, role models.CourseRole) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var enrolment models.Enrolment

		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).
			First(&enrolment).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			enrolment = models.Enrolment{
				UserID:   userID,
				CourseID: courseID,
				Role:     role,
			}

			if err := tx.Create(&enrolment).Error; err != nil {
				return fmt.Errorf("failed to create enrolment: %w", err)
			}

			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to query enrolment: %w", err)
		}

		if enrolment.Role == role {
			return nil
		}

		enrolment.Role = role

		if err := tx.Save(&enrolment).Error; err != nil {
			return fmt.Errorf("failed to update enrolment: %w", err)
		}

		return nil
	})
}

// Unenrol removes the user's enrolment from a course.
func (s *Service) Unenrol(userID, courseID uint64) error {
	return s.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.Enrolment{}).Error
}
