package aggregate

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/labagg-cli/internal/table"
)

// ErrGroupByUnsupported is returned by GroupBy.
var ErrGroupByUnsupported = errors.New("group by column is not supported")

// GroupBy would split every group by the values of column. It is not
// implemented and always returns ErrGroupByUnsupported.
func (a *Aggregated) GroupBy(column string) (map[string]*table.Table, error) {
	return nil, fmt.Errorf("group by %q: %w", column, ErrGroupByUnsupported)
}
