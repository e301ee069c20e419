package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeUnauthorized   = "E_UNAUTHORIZED"    // missing or invalid API key

	// Modpack errors
	CodeNotFound      = "E_NOT_FOUND"      // unknown modpack, file record or digest
	CodeAlreadyExists = "E_ALREADY_EXISTS" // modpack name is taken

	// Upload errors
	CodeUploadFailed = "E_UPLOAD_FAILED" // a failure while persisting uploaded bytes
)
