package urlcodec

import "uribeacon/pkg/serrors"

// Error kinds returned by the codec. Match them with errors.Is.
var (
	// ErrEmpty is returned for an empty URI or an empty payload.
	ErrEmpty = serrors.NewKind("EMPTY")
	// ErrUnknownScheme is returned when no scheme prefix matches on encode, or
	// the scheme code is not in the table on decode.
	ErrUnknownScheme = serrors.NewKind("UNKNOWN_SCHEME")
	// ErrMalformedUUID is returned when a urn:uuid: tail is not a canonical UUID.
	ErrMalformedUUID = serrors.NewKind("MALFORMED_UUID")
	// ErrInvalidLength is returned when a urn:uuid: payload does not carry
	// exactly 16 bytes after the scheme code.
	ErrInvalidLength = serrors.NewKind("INVALID_LENGTH")
	// ErrConfig is returned by New when the tables violate an invariant.
	ErrConfig = serrors.NewKind("CONFIG")
)
