package recipestore

import "errors"

// ErrScan reports a row the store could not decode.
var ErrScan = errors.New("scan recipe row")
