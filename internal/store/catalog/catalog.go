// Package catalog holds the SQL stores for the four reference resources
// managed by the back office: authors, publishers, subcategories and
// supcategories. They all expose the same ListByScope/Get/Create/Update/
// SetActive surface so a single generic controller can drive them.
package catalog

import (
	"errors"

	"github.com/huanvo/bookverse-api/internal/listing"
)

var ErrNotFound = errors.New("not found")

func scopeWhere(scope listing.Status) string {
	switch scope {
	case listing.StatusActive:
		return "WHERE active = true"
	case listing.StatusInactive:
		return "WHERE active = false"
	}
	return ""
}
