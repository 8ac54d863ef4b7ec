package id

import (
	"strconv"

	"github.com/google/uuid"
)

var pointNamespace = uuid.MustParse("6f1c2f0e-5b7a-4c8e-9d4e-3a2b1c0d9e8f")

// PointID derives the vector point id for an entity. The same (organization, kind, key)
// always yields the same UUID, so re-indexing overwrites instead of duplicating.
func PointID(organizationID int64, kind, key string) string {
	name := strconv.FormatInt(organizationID, 10) + "/" + kind + "/" + key
	return uuid.NewSHA1(pointNamespace, []byte(name)).String()
}
