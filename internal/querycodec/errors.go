package querycodec

import "errors"

// ErrInvalidParam wraps every decoding failure. The joined
// *validators.ValidationError carries the per-parameter messages.
var ErrInvalidParam = errors.New("invalid query parameter")
