package apierror

// Problem type URIs, used as the RFC 9457 "type" member
const (
	TypeValidation      = "urn:hydration:error:validation"
	TypeNotFound        = "urn:hydration:error:not_found"
	TypeConflict        = "urn:hydration:error:conflict"
	TypeRateLimit       = "urn:hydration:error:rate_limit"
	TypeUnauthorized    = "urn:hydration:error:unauthorized"
	TypeInternal        = "urn:hydration:error:internal"
	TypeUnavailable     = "urn:hydration:error:unavailable"
	TypeInvalidUUID     = "urn:hydration:error:invalid_uuid"
	TypeFutureTimestamp = "urn:hydration:error:future_timestamp"
	TypeBadRequest      = "urn:hydration:error:bad_request"
)

const (
	TitleValidation      = "Validation Error"
	TitleNotFound        = "Resource Not Found"
	TitleConflict        = "Resource Conflict"
	TitleRateLimit       = "Rate Limit Exceeded"
	TitleUnauthorized    = "Authentication Required"
	TitleInternal        = "Internal Server Error"
	TitleUnavailable     = "Service Unavailable"
	TitleInvalidUUID     = "Invalid UUID Format"
	TitleFutureTimestamp = "Future Timestamp Not Allowed"
	TitleBadRequest      = "Bad Request"
)
