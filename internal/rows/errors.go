package rows

import "errors"

// ErrFormat indicates a table stream inconsistent with its schema or pool.
var ErrFormat = errors.New("rows: malformed table stream")
