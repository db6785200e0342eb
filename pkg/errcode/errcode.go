package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBEmptyDatabaseError
	DBNotConnectedError
	DBQueryTablesError
	DBDropTableError
	DBUnsupportedDriverError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError

	// Schedule document and rule validation errors
	MissingInputError
	ScheduleParseError
	ScheduleInvalidError
	RuleUnknownTypeError
	RuleInvalidError
	LinkCategoryMismatchError
	LinkDanglingReferenceError
	MissingReferenceError

	// Seeding errors
	SeedStepError
	SeedCancelledError
	CatalogueReadError

	// Query errors
	QueryError
	QueryInvalidInputError

	// Export errors
	ExportError

	// Fetch errors
	FetchPageError
	FetchParseError
	FetchNoDataError

	// HTTP API errors
	ServeError
)
