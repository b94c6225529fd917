package dataset

import (
	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/pkg/models"
)

// RemoveDirectIdentifiers drops the declared direct-identifier columns
// from the dataset. Names absent from the schema are tolerated: a role
// file shared across several extracts may declare columns that a given
// extract never carried.
func RemoveDirectIdentifiers(ds *models.Dataset, names []string, logger *logrus.Logger) {
	if logger == nil {
		logger = logrus.New()
	}

	removed := make([]string, 0, len(names))
	skipped := make([]string, 0)
	for _, n := range names {
		if ds.HasColumn(n) {
			removed = append(removed, n)
		} else {
			skipped = append(skipped, n)
		}
	}

	ds.DropColumns(removed)

	logger.WithFields(logrus.Fields{
		"removed": removed,
		"skipped": skipped,
	}).Info("Removed direct identifiers")
}
