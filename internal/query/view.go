package query

import (
	"strconv"

	"github.com/harrison/mtpget/internal/models"
)

// unknownField is shown for optional fields the snapshot omitted.
const unknownField = "-"

// Row is the detailed view of one record, every field rendered as text.
type Row struct {
	ID       string
	Name     string
	Size     string
	ParentID string
}

// Simple projects records to their names.
func Simple(records []models.FileRecord) []string {
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	return names
}

// Detailed projects records to rows carrying every field.
func Detailed(records []models.FileRecord) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := Row{
			ID:       strconv.FormatInt(rec.ID, 10),
			Name:     rec.Name,
			Size:     unknownField,
			ParentID: unknownField,
		}
		if rec.HasSize() {
			row.Size = strconv.FormatInt(*rec.Size, 10)
		}
		if rec.HasParent() {
			row.ParentID = strconv.FormatInt(*rec.ParentID, 10)
		}
		rows[i] = row
	}
	return rows
}
