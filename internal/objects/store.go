// Package objects implements user-defined record types: a CustomObject
// carries an ordered field schema, and each CustomRecord stores one
// name→value document shaped by that schema.
package objects

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"crm/internal/events"
	"crm/internal/models"
)

// ErrNameExists is returned when defining an object whose name is already
// in use. Callers surface it as a validation failure, not a server fault.
var ErrNameExists = errors.New("custom object name already exists")

// Field describes one schema entry. Type is a free-form rendering hint
// ("text", "number", "textarea"); the store never interprets it.
type Field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Store persists custom object definitions and their records.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ZipFields pairs the parallel name/type/label arrays a schema form
// submits. Entries with an empty name are dropped; indexes past the end of
// the type or label arrays read as empty strings.
func ZipFields(names, types, labels []string) []Field {
	fields := make([]Field, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		field := Field{Name: name}
		if i < len(types) {
			field.Type = types[i]
		}
		if i < len(labels) {
			field.Label = labels[i]
		}
		fields = append(fields, field)
	}
	return fields
}

// DefineObject creates a new custom object type with the given field
// schema. The name must be globally unique.
func (s *Store) DefineObject(ctx context.Context, name, label, description string, fields []Field) (*models.CustomObject, error) {
	taken, err := models.CustomObjectNameTaken(s.db.WithContext(ctx), name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameExists
	}

	if fields == nil {
		fields = []Field{}
	}
	schema, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	object := &models.CustomObject{
		Name:        name,
		Label:       label,
		Description: description,
		Fields:      datatypes.JSON(schema),
	}
	if err := s.db.WithContext(ctx).Create(object).Error; err != nil {
		return nil, err
	}

	events.Emit("custom_objects.created", object)
	return object, nil
}

// ListObjects returns every custom object definition, oldest first.
func (s *Store) ListObjects(ctx context.Context) ([]models.CustomObject, error) {
	var objs []models.CustomObject
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&objs).Error; err != nil {
		return nil, err
	}
	return objs, nil
}

// Fields decodes an object's stored schema. An absent or malformed schema
// degrades to an empty slice; other components rely on this never failing.
func Fields(object *models.CustomObject) []Field {
	if object == nil || len(object.Fields) == 0 {
		return []Field{}
	}
	var fields []Field
	if err := json.Unmarshal(object.Fields, &fields); err != nil {
		return []Field{}
	}
	if fields == nil {
		return []Field{}
	}
	return fields
}

// CreateRecord stores one record for the object. Every schema field is
// written: missing values become empty strings, and submitted keys outside
// the schema are never read.
func (s *Store) CreateRecord(ctx context.Context, object *models.CustomObject, values map[string]string) (*models.CustomRecord, error) {
	document := make(map[string]string)
	for _, field := range Fields(object) {
		document[field.Name] = values[field.Name]
	}

	data, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}

	record := &models.CustomRecord{
		ObjectID: object.ID,
		Data:     datatypes.JSON(data),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	events.Emit("custom_records.created", record)
	return record, nil
}

// ListRecords returns the object's records in insertion order.
func (s *Store) ListRecords(ctx context.Context, object *models.CustomObject) ([]models.CustomRecord, error) {
	var records []models.CustomRecord
	if err := s.db.WithContext(ctx).
		Where("object_id = ?", object.ID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Document decodes a record's stored data. Malformed data degrades to an
// empty map, mirroring the schema decode contract.
func Document(record *models.CustomRecord) map[string]string {
	if record == nil || len(record.Data) == 0 {
		return map[string]string{}
	}
	var document map[string]string
	if err := json.Unmarshal(record.Data, &document); err != nil {
		return map[string]string{}
	}
	if document == nil {
		return map[string]string{}
	}
	return document
}
