// Package spreadsheet converts events to and from single-sheet XLSX workbooks.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/citypulse/events-api/internal/domain"
)

const (
	SheetName = "Events"

	// Timestamps are written without timezone information.
	timeLayout = "2006-01-02 15:04:05"
)

var header = []interface{}{
	"Title", "Description", "Publication date", "Start date", "End date",
	"Location", "Coordinates", "Rating",
}

// WriteEvents renders the given events as a workbook with one row per event
// and the coordinates combined into a single "lat, lon" cell.
func WriteEvents(events []domain.Event) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("f.SetSheetName -> %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
	}

	for i, event := range events {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}

		row := []interface{}{
			event.Title,
			event.Description,
			event.PubDate.Format(timeLayout),
			event.StartDate.Format(timeLayout),
			event.EndDate.Format(timeLayout),
			event.Location.Name,
			FormatCoordinates(event.Location.Lat, event.Location.Lon),
			event.Rating,
		}
		if err = f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
		}
	}

	return f, nil
}

// ReadEvents parses rows from row 2 onward. Rows with an empty title are
// skipped; any other malformed row aborts the whole parse.
func ReadEvents(r io.Reader) ([]domain.ImportedEvent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenReader -> %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("f.GetRows -> %w", err)
	}

	var events []domain.ImportedEvent
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		rowNum := i + 1

		title := cellAt(row, 0)
		if title == "" {
			continue
		}

		startDate, err := parseTime(cellAt(row, 3))
		if err != nil {
			return nil, fmt.Errorf("row %v: invalid start date: %w", rowNum, err)
		}
		endDate, err := parseTime(cellAt(row, 4))
		if err != nil {
			return nil, fmt.Errorf("row %v: invalid end date: %w", rowNum, err)
		}

		locationName := cellAt(row, 5)
		if locationName == "" {
			return nil, fmt.Errorf("row %v: location name is required", rowNum)
		}

		lat, lon, err := ParseCoordinates(cellAt(row, 6))
		if err != nil {
			return nil, fmt.Errorf("row %v: %w", rowNum, err)
		}

		var rating uint
		if s := cellAt(row, 7); s != "" {
			parsed, err := strconv.ParseUint(s, 10, 32)
			if err != nil || parsed > domain.MaxRating {
				return nil, fmt.Errorf("row %v: invalid rating %q", rowNum, s)
			}
			rating = uint(parsed)
		}

		events = append(events, domain.ImportedEvent{
			Title:        title,
			Description:  cellAt(row, 1),
			StartDate:    startDate,
			EndDate:      endDate,
			LocationName: locationName,
			Lat:          lat,
			Lon:          lon,
			Rating:       rating,
		})
	}

	return events, nil
}

// FormatCoordinates renders "lat, lon", the format ParseCoordinates accepts.
func FormatCoordinates(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64)
}

func ParseCoordinates(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinates %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", strings.TrimSpace(parts[0]))
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", strings.TrimSpace(parts[1]))
	}

	return lat, lon, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}

	return ""
}
