package service

import (
	"context"
	"fmt"

	"github.com/rzcleanseal/leads-api/internal/database"
)

const (
	maxReportedCollections = 10
	maxReportedErrorRunes  = 80
)

// DiagnosticsReport is the connectivity report served on /test.
// Absent values are encoded as null.
type DiagnosticsReport struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// SystemService inspects the store handle for diagnostics.
type SystemService struct {
	db *database.Database
}

func NewSystemService(db *database.Database) *SystemService {
	return &SystemService{db: db}
}

func defaultReport() *DiagnosticsReport {
	return &DiagnosticsReport{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}
}

// Diagnostics builds the report. It never fails: problems are
// described in the Database field.
func (s *SystemService) Diagnostics(ctx context.Context) (report *DiagnosticsReport) {
	report = defaultReport()

	defer func() {
		if r := recover(); r != nil {
			report.Database = "❌ Error: " + truncate(fmt.Sprint(r), maxReportedErrorRunes)
		}
	}()

	if s.db == nil || !s.db.Available() {
		report.Database = "⚠️  Available but not initialized"
		return report
	}

	urlStatus := "❌ Not Set"
	if s.db.URLSet() {
		urlStatus = "✅ Set"
	}
	name := s.db.Name()

	report.Database = "✅ Available"
	report.DatabaseURL = &urlStatus
	report.DatabaseName = &name
	report.ConnectionStatus = "Connected"

	collections, err := s.db.ListCollectionNames(ctx)
	if err != nil {
		report.Database = "⚠️  Connected but Error: " + truncate(err.Error(), maxReportedErrorRunes)
		return report
	}

	if len(collections) > maxReportedCollections {
		collections = collections[:maxReportedCollections]
	}
	if collections != nil {
		report.Collections = collections
	}
	report.Database = "✅ Connected & Working"

	return report
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
