package gorm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/casq89/mibauu-backend/pkg/model"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func TestRecordStore_List(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`SELECT t.* FROM "category" t ORDER BY t."id" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "enable"}).
			AddRow(int64(1), "Toys", true).
			AddRow(int64(2), "Books", false))

	rows, err := s.List(context.Background(), "category", store.Query{Order: &store.Order{Column: "id"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.Record{"id": int64(1), "name": "Toys", "enable": true}, rows[0])
	assert.Equal(t, "Books", rows[1].String("name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_List_FiltersAndEmbed(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`SELECT t.*, CASE WHEN e0."id" IS NULL THEN NULL ELSE json_build_object('name', e0."name") END AS "category" ` +
		`FROM "products" t LEFT JOIN "category" e0 ON e0."id" = t."category_id" ` +
		`WHERE t."enable" = $1 AND t."stock" > $2 ORDER BY t."name" ASC`).
		WithArgs(true, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock", "category"}).
			AddRow(int64(5), "Ball", int64(3), []byte(`{"name":"Toys"}`)).
			AddRow(int64(6), "Kite", int64(1), nil))

	rows, err := s.List(context.Background(), "products", store.Query{
		Filters: []store.Filter{store.Eq("enable", true), store.Gt("stock", 0)},
		Order:   &store.Order{Column: "name"},
		Embeds:  []store.Embed{{Table: "category", ForeignKey: "category_id", Columns: []string{"name"}}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	out, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"name":"Ball","stock":3,"category":{"name":"Toys"}}`, string(out))
	assert.Nil(t, rows[1]["category"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_List_Empty(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`SELECT t.* FROM "offer" t WHERE t."id" = $1`).
		WithArgs("99").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := s.List(context.Background(), "offer", store.Query{Filters: []store.Filter{store.Eq("id", "99")}})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestRecordStore_List_RejectsUnsafeIdentifiers(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	_, err := s.List(context.Background(), "products; DROP TABLE products", store.Query{})
	var serr *store.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "list", serr.Op)

	_, err = s.List(context.Background(), "products", store.Query{Order: &store.Order{Column: "name desc"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Insert(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`INSERT INTO "category" ("enable", "name") VALUES ($1, $2) RETURNING *`).
		WithArgs(true, "Toys").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "enable"}).AddRow(int64(1), "Toys", true))

	rows, err := s.Insert(context.Background(), "category", model.Record{"name": "Toys", "enable": true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Insert_NestedValueBoundAsJSON(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`INSERT INTO "consent" ("device_id", "preferences") VALUES ($1, $2) RETURNING *`).
		WithArgs("dev-1", `{"ads":false}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id"}).AddRow(int64(3), "dev-1"))

	_, err := s.Insert(context.Background(), "consent", model.Record{
		"device_id":   "dev-1",
		"preferences": map[string]interface{}{"ads": false},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Insert_StoreMessage(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`INSERT INTO "products" ("name") VALUES ($1) RETURNING *`).
		WithArgs("Ball").
		WillReturnError(&pgconn.PgError{Code: "23502", Message: `null value in column "price" violates not-null constraint`})

	_, err := s.Insert(context.Background(), "products", model.Record{"name": "Ball"})
	var serr *store.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, `null value in column "price" violates not-null constraint`, serr.Error())
	assert.Equal(t, "products", serr.Table)
}

func TestRecordStore_Update(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`UPDATE "products" SET "imagen_url" = $1, "name" = $2 WHERE "id" = $3 RETURNING *`).
		WithArgs("https://cdn/new.png", "Ball", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "imagen_url"}).AddRow(int64(5), "Ball", "https://cdn/new.png"))

	rows, err := s.Update(context.Background(), "products",
		[]store.Filter{store.Eq("id", int64(5))},
		model.Record{"name": "Ball", "imagen_url": "https://cdn/new.png"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://cdn/new.png", rows[0].String("imagen_url"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Update_RequiresFilter(t *testing.T) {
	db, _ := setupTestDB(t)
	s := NewRecordStore(db)

	_, err := s.Update(context.Background(), "products", nil, model.Record{"name": "x"})
	assert.EqualError(t, err, "update requires a filter")
}

func TestRecordStore_Update_EmptyPatchReadsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`SELECT t.* FROM "offer" t WHERE t."id" = $1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	rows, err := s.Update(context.Background(), "offer", []store.Filter{store.Eq("id", int64(2))}, model.Record{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRecordStore_Delete(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectExec(`DELETE FROM "offer" WHERE "id" = $1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Delete(context.Background(), "offer", []store.Filter{store.Eq("id", int64(4))})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Delete_StoreMessage(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectExec(`DELETE FROM "category" WHERE "id" = $1`).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: `update or delete on table "category" violates foreign key constraint`})

	err := s.Delete(context.Background(), "category", []store.Filter{store.Eq("id", int64(1))})
	assert.EqualError(t, err, `update or delete on table "category" violates foreign key constraint`)
}

func TestRecordStore_NextSequence(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRecordStore(db)

	mock.ExpectQuery(`SELECT "get_next_product_code"()`).
		WillReturnRows(sqlmock.NewRows([]string{"get_next_product_code"}).AddRow(int64(1042)))

	next, err := s.NextSequence(context.Background(), model.ProductCodeSequence)
	require.NoError(t, err)
	assert.Equal(t, int64(1042), next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, json.Number("12.50"), normalize([]byte("12.50"), "NUMERIC", false))
	assert.Equal(t, json.RawMessage(`{"a":1}`), normalize(`{"a":1}`, "JSONB", false))
	assert.Equal(t, "plain", normalize([]byte("plain"), "TEXT", false))
	assert.Equal(t, int64(7), normalize(int64(7), "INT8", false))
}

func TestHealthStore_CheckConnectivity(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHealthStore(db)

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.CheckConnectivity(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
