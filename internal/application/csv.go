package application

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// csvHeader is the fixed column order of the session export.
var csvHeader = []string{"ID", "Category", "Description", "Start Time", "End Time", "Duration"}

// noCategoryLabel is rendered when a session has no category or the reference
// cannot be resolved.
const noCategoryLabel = "(No Category)"

// ExportCSV writes all sessions as CSV rows in the supplied order, which the
// caller is expected to keep most-recent-start-first. Category names resolve
// through categoriesByID so soft-deleted categories still render by name. An
// open end time renders as an empty field and its duration is computed up to
// now.
func ExportCSV(w io.Writer, sessions []Session, categoriesByID map[string]Category, now time.Time) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, session := range sessions {
		row, err := csvRow(session, categoriesByID, now)
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(session Session, categoriesByID map[string]Category, now time.Time) ([]string, error) {
	categoryName := noCategoryLabel
	if session.CategoryID != nil {
		if category, ok := categoriesByID[*session.CategoryID]; ok {
			categoryName = category.Name
		}
	}

	endField := ""
	if session.EndUTC != nil {
		endField = session.EndUTC.UTC().Format(time.RFC3339)
	}

	elapsed, err := SessionElapsed(session, now)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	return []string{
		session.ID,
		categoryName,
		session.Description,
		session.StartUTC.UTC().Format(time.RFC3339),
		endField,
		FormatDuration(elapsed),
	}, nil
}

// CategoriesByID indexes categories for CSV export lookups.
func CategoriesByID(categories []Category) map[string]Category {
	index := make(map[string]Category, len(categories))
	for _, category := range categories {
		index[category.ID] = category
	}
	return index
}
