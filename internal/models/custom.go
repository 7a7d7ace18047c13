package models

import "gorm.io/datatypes"

// CustomObject is a user-defined record type. Fields holds the ordered
// field schema as a JSON array of {name, type, label} descriptors; the
// field type is a free-form hint ("text", "number", "textarea") interpreted
// only by the rendering layer.
type CustomObject struct {
	Base
	Name        string         `gorm:"uniqueIndex;not null" json:"name" validate:"required,min=2"`
	Label       string         `gorm:"not null" json:"label" validate:"required"`
	Description string         `json:"description"`
	Fields      datatypes.JSON `json:"fields"`

	Records []CustomRecord `gorm:"foreignKey:ObjectID;constraint:OnDelete:CASCADE" json:"records,omitempty"`
}

// CustomRecord is one instance of a CustomObject. Data maps field names to
// string values; keys are expected to match the owning object's schema but
// are not enforced beyond "schema fields are what gets written".
type CustomRecord struct {
	Base
	ObjectID string         `gorm:"type:uuid;not null;index" json:"objectId"`
	Object   *CustomObject  `json:"object,omitempty"`
	Data     datatypes.JSON `json:"data"`
}
