package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode(t *testing.T) {
	tests := []struct {
		sqlState string
		want     Code
	}{
		{"23505", UniqueViolation},
		{"23503", ForeignKeyViolation},
		{"23502", NotNullViolation},
		{"23514", CheckViolation},
		{"22P02", InvalidTextRepresentation},
		{"42P01", UndefinedTable},
		{"57014", QueryCanceled},
		{"08006", ConnectionFailure},
		{"53300", InsufficientResources},
		{"XX000", Other},
		{"", Other},
	}

	for _, tt := range tests {
		t.Run(tt.sqlState, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCode(tt.sqlState))
		})
	}
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityError, MapSeverity("ERROR"))
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityUnknown, MapSeverity("LOG"))
}

func TestConvertPgError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           "23505",
			Severity:       "ERROR",
			Message:        `duplicate key value violates unique constraint "documents_id_key"`,
			TableName:      "documents",
			ConstraintName: "documents_id_key",
		}

		err := ConvertPgError(fmt.Errorf("insert: %w", pgErr))

		var sqlErr *Error
		require.ErrorAs(t, err, &sqlErr)
		assert.Equal(t, UniqueViolation, sqlErr.Code)
		assert.Equal(t, SeverityError, sqlErr.Severity)
		assert.Equal(t, "DOCUMENT_ALREADY_EXISTS", sqlErr.AppCode)
		assert.Equal(t, "A Document with this Id already exists", sqlErr.Error())
		assert.ErrorIs(t, err, pgErr)
		assert.Equal(t, "23505", sqlErr.DatabaseCode)
	})

	t.Run("undefined table", func(t *testing.T) {
		err := ConvertPgError(&pgconn.PgError{Code: "42P01", Message: `relation "documents" does not exist`})

		var sqlErr *Error
		require.ErrorAs(t, err, &sqlErr)
		assert.Equal(t, UndefinedTable, sqlErr.Code)
		assert.Equal(t, SeverityUnknown, sqlErr.Severity)
		assert.Contains(t, err.Error(), "migrations")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		plain := errors.New("connection reset")
		assert.Same(t, plain, ConvertPgError(plain))
		assert.NoError(t, ConvertPgError(nil))
	})
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_leads_email"))
	assert.Equal(t, "id", extractColumnForUniqueViolation("documents_id_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("documents_pkey"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}

func TestGetEntityName(t *testing.T) {
	assert.Equal(t, "Lead", getEntityName("documents", "lead_id"))
	assert.Equal(t, "Document", getEntityName("documents", ""))
	assert.Equal(t, "record", getEntityName("", ""))
}
