// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidSubject     = "auth.invalid_subject"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthInvalidHash        = "auth.invalid_hash"

	// Validation
	KeyValidationInvalid    = "validation.invalid"
	KeyValidationPagination = "validation.pagination"
	KeyValidationRange      = "validation.range"
	KeyValidationDate       = "validation.date"
	KeyValidationRangePair  = "validation.range_pair"
	KeyValidationAction     = "validation.action"

	// Catalog
	KeyTeaNotFound = "tea.not_found"

	// Import
	KeyImportMissingColumns = "import.missing_columns"
	KeyImportUnreadable     = "import.unreadable"
	KeyImportFieldRequired  = "import.field_required"
	KeyImportYearInvalid    = "import.year_invalid"
	KeyImportPriceInvalid   = "import.price_invalid"

	// Upload
	KeyUploadMissingFile = "upload.missing_file"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
