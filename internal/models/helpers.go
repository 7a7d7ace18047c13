package models

import (
	"errors"

	"gorm.io/gorm"
)

// UsernameTaken reports whether another user already holds the username.
// Uniqueness is verified before insert so duplicates surface as validation
// failures rather than database faults.
func UsernameTaken(db *gorm.DB, username, excludeID string) (bool, error) {
	return exists(db.Model(&User{}).Where("username = ?", username), excludeID)
}

// EmailTaken reports whether another user already holds the email.
func EmailTaken(db *gorm.DB, email, excludeID string) (bool, error) {
	return exists(db.Model(&User{}).Where("email = ?", email), excludeID)
}

// CustomObjectNameTaken reports whether a custom object with the name
// already exists. CustomObject names are globally unique.
func CustomObjectNameTaken(db *gorm.DB, name, excludeID string) (bool, error) {
	return exists(db.Model(&CustomObject{}).Where("name = ?", name), excludeID)
}

func exists(query *gorm.DB, excludeID string) (bool, error) {
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UserByUsername loads an active-or-not user by username.
func UserByUsername(db *gorm.DB, username string) (*User, error) {
	user := &User{}
	if err := db.Where("username = ?", username).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CustomObjectByID loads a custom object definition.
func CustomObjectByID(db *gorm.DB, id string) (*CustomObject, error) {
	object := &CustomObject{}
	if err := db.First(object, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return object, nil
}

// IsNotFound reports whether err is gorm's missing-record condition.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
