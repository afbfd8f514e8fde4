package diff

import "errors"

// ErrIrreversible indicates a replace patch was built without capturing the
// prior whole value, so it has no inverse.
var ErrIrreversible = errors.New("patch has no captured previous value")
