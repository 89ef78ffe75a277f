package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

var statisticPeriods = []string{"month", "quarter", "year"}

type PeriodCount struct {
	Period time.Time `json:"period"`
	Count  int64     `json:"count"`
}

type DistrictAveragePrice struct {
	DistrictID   uint   `json:"district_id"`
	DistrictName string `json:"district_name"`
	AveragePrice int64  `json:"average_price"`
	Posts        int64  `json:"posts"`
}

// NormalizePeriod falls back to month for anything it does not know.
func NormalizePeriod(period string) string {
	if lo.Contains(statisticPeriods, period) {
		return period
	}
	return "month"
}

// CountAccountsByPeriod counts sign ups per month, quarter or year.
// An empty role counts every account.
func CountAccountsByPeriod(period string, year *int, role string) ([]PeriodCount, error) {
	period = NormalizePeriod(period)

	tx := database.C.Model(&models.Account{}).
		Select(fmt.Sprintf("date_trunc('%s', created_at) AS period, COUNT(id) AS count", period))
	if year != nil {
		tx = tx.Where("EXTRACT(YEAR FROM created_at) = ?", *year)
	}
	if len(role) > 0 {
		tx = tx.Where("role = ?", role)
	}

	out := []PeriodCount{}
	if err := tx.Group("period").Order("period").Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("unable to count accounts: %v", err)
	}
	return out, nil
}

// AveragePriceByDistrict averages the price of approved posts in a city per district.
// Averages are truncated to whole currency units.
func AveragePriceByDistrict(cityID uint) ([]DistrictAveragePrice, error) {
	posts := database.C.NamingStrategy.TableName("RentalPost")
	districts := database.C.NamingStrategy.TableName("District")

	out := []DistrictAveragePrice{}
	if err := database.C.Model(&models.RentalPost{}).
		Select(fmt.Sprintf(
			"%[1]s.district_id, %[2]s.name AS district_name, CAST(FLOOR(AVG(%[1]s.price)) AS BIGINT) AS average_price, COUNT(%[1]s.id) AS posts",
			posts, districts,
		)).
		Joins(fmt.Sprintf("JOIN %[2]s ON %[2]s.id = %[1]s.district_id", posts, districts)).
		Where(posts+".city_id = ? AND "+posts+".is_approved = ?", cityID, true).
		Group(fmt.Sprintf("%s.district_id, %s.name", posts, districts)).
		Order(posts + ".district_id").
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("unable to average prices: %v", err)
	}
	return out, nil
}

// ExportAveragePrices renders the report as an xlsx workbook.
func ExportAveragePrices(city models.City, rows []DistrictAveragePrice) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Average prices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []any{"District ID", "District", "Posts", "Average price"}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"City", city.Name}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return nil, err
	}
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{row.DistrictID, row.DistrictName, row.Posts, row.AveragePrice}); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
