package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var uniqueConstraintPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// ConvertPgError converts a *pgconn.PgError anywhere in err's chain into
// an *Error. Any other error is returned unchanged, nil stays nil.
//
// This function is intended to be called right after a failed query.
func ConvertPgError(err error) error {
	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) {
		return err
	}

	sqlErr := &Error{
		Code:           MapCode(pgerr.Code),
		Severity:       MapSeverity(pgerr.Severity),
		DatabaseCode:   pgerr.Code,
		SchemaName:     pgerr.SchemaName,
		TableName:      pgerr.TableName,
		ColumnName:     pgerr.ColumnName,
		DataTypeName:   pgerr.DataTypeName,
		ConstraintName: pgerr.ConstraintName,
		driverErr:      err,
	}
	sqlErr.AppCode = generateErrorCode(sqlErr.TableName, sqlErr.Code)
	sqlErr.Message = formatUserFriendlyMessage(sqlErr)

	return sqlErr
}

// generateErrorCode creates a machine-friendly code, <DOMAIN>_<ACTION>.
//
// Example:
//
//	documents + UniqueViolation => DOCUMENT_ALREADY_EXISTS
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidTextRepresentation:
		action = "INVALID"
	case UndefinedTable:
		action = "MISSING"
	case ConnectionFailure, InsufficientResources:
		action = "UNAVAILABLE"
	case QueryCanceled:
		action = "CANCELED"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage phrases the error for API clients.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		field := humanizeText(extractColumnForUniqueViolation(sqlErr.ConstraintName))
		if field == "" {
			field = "identifier"
		}
		return fmt.Sprintf("A %s with this %s already exists", entityName, field)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case InvalidTextRepresentation:
		return "A value could not be stored in the expected format"

	case UndefinedTable:
		return "The document store schema is missing, migrations have not been applied"

	case ConnectionFailure:
		return "Lost connection to the database"

	case InsufficientResources:
		return "The database is out of resources"

	case QueryCanceled:
		return "The database operation was canceled"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers an entity name from table/column data.
//
// Priority rules:
//  1. A column ending with "_id" gives its base name ("lead_id" -> "Lead")
//  2. Otherwise the table name, singularized if it ends with "s"
//  3. Otherwise "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case.
//
//	"first_name" -> "First Name"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the column from a unique
// constraint name. Two conventions are understood:
//
//  1. "unique_<table>_<column>", e.g. unique_documents_id -> "id"
//  2. "<table>_<column>_(key|ukey)", e.g. documents_id_key -> "id"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueConstraintPattern.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}
