package integrity

import "colabdraw/core/errors"

var errNoDatabase = errors.Wrap(errors.ErrInvalidRequest, "database connection is not configured")
