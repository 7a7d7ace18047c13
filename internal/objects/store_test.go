package objects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"crm/internal/db/testutil"
	"crm/internal/models"
)

func TestZipFieldsDropsEmptyNames(t *testing.T) {
	fields := ZipFields(
		[]string{"sku", "", "price"},
		[]string{"text", "text", "number"},
		[]string{"SKU", "unused", "Price"},
	)
	require.Equal(t, []Field{
		{Name: "sku", Type: "text", Label: "SKU"},
		{Name: "price", Type: "number", Label: "Price"},
	}, fields)
}

func TestZipFieldsToleratesShortArrays(t *testing.T) {
	fields := ZipFields([]string{"a", "b"}, []string{"text"}, nil)
	require.Equal(t, []Field{
		{Name: "a", Type: "text"},
		{Name: "b"},
	}, fields)
}

func TestDefineObjectRoundTrip(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	store := NewStore(conn)

	submitted := []Field{
		{Name: "sku", Type: "text", Label: "SKU"},
		{Name: "price", Type: "number", Label: "Price"},
		{Name: "notes", Type: "textarea", Label: "Notes"},
	}
	object, err := store.DefineObject(context.Background(), "Product", "Product", "catalog", submitted)
	require.NoError(t, err)

	var reloaded models.CustomObject
	require.NoError(t, conn.First(&reloaded, "id = ?", object.ID).Error)
	require.Equal(t, submitted, Fields(&reloaded))
}

func TestDefineObjectRejectsDuplicateName(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	store := NewStore(conn)

	_, err := store.DefineObject(context.Background(), "Product", "Product", "", nil)
	require.NoError(t, err)

	_, err = store.DefineObject(context.Background(), "Product", "Other Label", "", nil)
	require.ErrorIs(t, err, ErrNameExists)
}

func TestFieldsDegradesToEmptyOnCorruptSchema(t *testing.T) {
	require.Empty(t, Fields(nil))
	require.Empty(t, Fields(&models.CustomObject{}))
	require.Empty(t, Fields(&models.CustomObject{Fields: datatypes.JSON(`{not json`)}))
	require.Empty(t, Fields(&models.CustomObject{Fields: datatypes.JSON(`"wrong shape"`)}))
	require.Empty(t, Fields(&models.CustomObject{Fields: datatypes.JSON(`null`)}))
}

func TestCreateRecordFillsMissingFieldsWithEmptyStrings(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	store := NewStore(conn)

	object, err := store.DefineObject(context.Background(), "Ticket", "Ticket", "", []Field{
		{Name: "subject", Type: "text", Label: "Subject"},
		{Name: "priority", Type: "text", Label: "Priority"},
	})
	require.NoError(t, err)

	record, err := store.CreateRecord(context.Background(), object, map[string]string{
		"subject": "printer on fire",
		"ignored": "not in schema",
	})
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"subject":  "printer on fire",
		"priority": "",
	}, Document(record))
}

func TestDocumentDegradesToEmptyOnCorruptData(t *testing.T) {
	require.Empty(t, Document(nil))
	require.Empty(t, Document(&models.CustomRecord{}))
	require.Empty(t, Document(&models.CustomRecord{Data: datatypes.JSON(`[1, 2]`)}))
	require.Empty(t, Document(&models.CustomRecord{Data: datatypes.JSON(`{broken`)}))
}

func TestListRecordsKeepsInsertionOrder(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	store := NewStore(conn)

	object, err := store.DefineObject(context.Background(), "Product", "Product", "", []Field{
		{Name: "sku", Type: "text", Label: "SKU"},
	})
	require.NoError(t, err)

	_, err = store.CreateRecord(context.Background(), object, map[string]string{"sku": "ABC-1"})
	require.NoError(t, err)
	_, err = store.CreateRecord(context.Background(), object, map[string]string{"sku": "ABC-2"})
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background(), object)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, map[string]string{"sku": "ABC-1"}, Document(&records[0]))
	require.Equal(t, map[string]string{"sku": "ABC-2"}, Document(&records[1]))
}

func TestProductScenario(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	store := NewStore(conn)

	object, err := store.DefineObject(context.Background(), "Product", "Product", "", []Field{
		{Name: "sku", Type: "text", Label: "SKU"},
	})
	require.NoError(t, err)

	_, err = store.CreateRecord(context.Background(), object, map[string]string{"sku": "ABC-1"})
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background(), object)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, map[string]string{"sku": "ABC-1"}, Document(&records[0]))
}
