package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockPostgres(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), database.NewConfig())
	require.NoError(t, err)

	prev := database.C
	database.C = gdb
	t.Cleanup(func() {
		database.C = prev
		_ = db.Close()
	})
	return mock
}

func TestNormalizePeriod(t *testing.T) {
	assert.Equal(t, "quarter", NormalizePeriod("quarter"))
	assert.Equal(t, "year", NormalizePeriod("year"))
	assert.Equal(t, "month", NormalizePeriod("day"))
	assert.Equal(t, "month", NormalizePeriod(""))
}

func TestCountAccountsByPeriod(t *testing.T) {
	mock := setupMockPostgres(t)
	q1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q2 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT date_trunc\('quarter', created_at\) AS period, COUNT\(id\) AS count FROM "accounts" WHERE EXTRACT\(YEAR FROM created_at\) = \$1 AND role = \$2 .*GROUP BY period ORDER BY period`).
		WithArgs(2024, models.AccountRoleOwner).
		WillReturnRows(sqlmock.NewRows([]string{"period", "count"}).
			AddRow(q1, 3).
			AddRow(q2, 5))

	year := 2024
	out, err := CountAccountsByPeriod("quarter", &year, models.AccountRoleOwner)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Period.Equal(q1))
	assert.EqualValues(t, 3, out[0].Count)
	assert.EqualValues(t, 5, out[1].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAccountsByPeriodDefaultsToMonth(t *testing.T) {
	mock := setupMockPostgres(t)

	mock.ExpectQuery(`SELECT date_trunc\('month', created_at\).*FROM "accounts" WHERE "accounts"."deleted_at" IS NULL GROUP BY period`).
		WillReturnRows(sqlmock.NewRows([]string{"period", "count"}))

	out, err := CountAccountsByPeriod("fortnight", nil, "")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAveragePriceByDistrict(t *testing.T) {
	mock := setupMockPostgres(t)

	mock.ExpectQuery(`SELECT rental_posts.district_id, districts.name AS district_name, CAST\(FLOOR\(AVG\(rental_posts.price\)\) AS BIGINT\) AS average_price, COUNT\(rental_posts.id\) AS posts FROM "rental_posts" JOIN districts ON districts.id = rental_posts.district_id WHERE \(rental_posts.city_id = \$1 AND rental_posts.is_approved = \$2\) .*GROUP BY rental_posts.district_id, districts.name ORDER BY rental_posts.district_id`).
		WithArgs(7, true).
		WillReturnRows(sqlmock.NewRows([]string{"district_id", "district_name", "average_price", "posts"}).
			AddRow(1, "District 1", 3500, 4).
			AddRow(3, "District 3", 2666, 3))

	out, err := AveragePriceByDistrict(7)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, DistrictAveragePrice{DistrictID: 1, DistrictName: "District 1", AveragePrice: 3500, Posts: 4}, out[0])
	assert.EqualValues(t, 2666, out[1].AveragePrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportAveragePrices(t *testing.T) {
	buf, err := ExportAveragePrices(models.City{Name: "Ho Chi Minh"}, []DistrictAveragePrice{
		{DistrictID: 1, DistrictName: "District 1", AveragePrice: 3500, Posts: 4},
		{DistrictID: 3, DistrictName: "District 3", AveragePrice: 2666, Posts: 3},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Average prices")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"City", "Ho Chi Minh"}, rows[0])
	assert.Equal(t, []string{"District ID", "District", "Posts", "Average price"}, rows[2])
	assert.Equal(t, []string{"1", "District 1", "4", "3500"}, rows[3])
	assert.Equal(t, []string{"3", "District 3", "3", "2666"}, rows[4])
}
