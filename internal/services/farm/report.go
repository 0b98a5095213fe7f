package farm

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

// ReportRow is one plant of the grid export.
type ReportRow struct {
	ID            int     `csv:"id"`
	Row           int     `csv:"row"`
	Col           int     `csv:"col"`
	Type          string  `csv:"type"`
	WaterLevel    int     `csv:"water_level"`
	Health        int     `csv:"health"`
	Growth        int     `csv:"growth"`
	DaysToHarvest int     `csv:"days_to_harvest"`
	ExpectedYield float64 `csv:"expected_yield"`
	Status        string  `csv:"status"`
}

func ReportRows(plants []entities.Plant) []*ReportRow {
	rows := make([]*ReportRow, 0, len(plants))
	for _, p := range plants {
		rows = append(rows, &ReportRow{
			ID:            p.ID,
			Row:           p.Position.Row,
			Col:           p.Position.Col,
			Type:          p.Type,
			WaterLevel:    p.WaterLevel,
			Health:        p.Health,
			Growth:        p.Growth,
			DaysToHarvest: p.DaysToHarvest,
			ExpectedYield: p.ExpectedYield,
			Status:        simulation.Status(p),
		})
	}
	return rows
}

// WriteCSV writes the grid export with a header row.
func WriteCSV(w io.Writer, plants []entities.Plant) error {
	return gocsv.Marshal(ReportRows(plants), w)
}

var xlsxHeader = []interface{}{
	"id", "row", "col", "type", "water_level", "health", "growth",
	"days_to_harvest", "expected_yield", "status",
}

const gridSheet = "Grid"

// WriteXLSX writes the grid export as a one-sheet workbook, followed by a
// Stats sheet with the aggregate figures.
func WriteXLSX(w io.Writer, plants []entities.Plant) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gridSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(gridSheet, "A1", &xlsxHeader); err != nil {
		return err
	}
	for i, r := range ReportRows(plants) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.ID, r.Row, r.Col, r.Type, r.WaterLevel, r.Health, r.Growth, r.DaysToHarvest, r.ExpectedYield, r.Status}
		if err := f.SetSheetRow(gridSheet, cell, &row); err != nil {
			return err
		}
	}

	st := simulation.Compute(plants)
	if _, err := f.NewSheet("Stats"); err != nil {
		return err
	}
	stats := [][]interface{}{
		{"total_plants", st.TotalPlants},
		{"healthy_plants", st.HealthyPlants},
		{"critical_plants", st.CriticalPlants},
		{"average_water_level", st.AverageWaterLevel},
		{"estimated_harvest", st.EstimatedHarvest},
		{"days_to_next_harvest", st.DaysToNextHarvest},
		{"water_efficiency", st.WaterEfficiency},
	}
	for i := range stats {
		if err := f.SetSheetRow("Stats", fmt.Sprintf("A%d", i+1), &stats[i]); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
