package privacy

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gmolate/anonimizarpy/pkg/errors"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func buildDataset(t *testing.T, columns []string, rows []models.Record) *models.Dataset {
	t.Helper()
	ds := models.NewDataset(columns)
	for _, row := range rows {
		require.NoError(t, ds.Append(row))
	}
	return ds
}

func TestComputeGroupStats(t *testing.T) {
	ds := buildDataset(t, []string{"comuna", "sexo", "diagnostico"}, []models.Record{
		{"comuna": "13101", "sexo": "M", "diagnostico": "J45"},
		{"comuna": "13101", "sexo": "M", "diagnostico": "E11"},
		{"comuna": "13101", "sexo": "M", "diagnostico": "J45"},
		{"comuna": "13101", "sexo": "F", "diagnostico": "I10"},
		{"comuna": "13101", "sexo": "F", "diagnostico": "I10"},
		{"comuna": "13201", "sexo": "F", "diagnostico": "I10"},
		{"comuna": "13201", "sexo": "F", "diagnostico": "F32"},
		{"comuna": "13201", "sexo": "M", "diagnostico": "C34"},
		{"comuna": "13102", "sexo": "M", "diagnostico": "J45"},
		{"comuna": "13102", "sexo": "M", "diagnostico": ""},
	})

	calc := NewGroupStatsCalculator(testLogger())
	table, err := calc.Compute(ds, []string{"comuna", "sexo"}, "diagnostico")
	require.NoError(t, err)

	assert.Equal(t, 5, table.Groups())

	// (13101, M): three records, two distinct diagnoses.
	assert.Equal(t, models.GroupStats{K: 3, L: 2}, table.ForRecord(0))
	assert.Equal(t, table.ForRecord(0), table.ForRecord(1))
	assert.Equal(t, table.ForRecord(0), table.ForRecord(2))

	// (13101, F): large enough but no diversity.
	assert.Equal(t, models.GroupStats{K: 2, L: 1}, table.ForRecord(3))

	// (13201, F): meets both.
	assert.Equal(t, models.GroupStats{K: 2, L: 2}, table.ForRecord(5))

	// (13201, M): singleton.
	assert.Equal(t, models.GroupStats{K: 1, L: 1}, table.ForRecord(7))

	// (13102, M): the empty diagnosis counts toward k but not l.
	assert.Equal(t, models.GroupStats{K: 2, L: 1}, table.ForRecord(8))

	failing := table.Failing(models.Threshold{MinK: 2, MinL: 2})
	assert.Equal(t, []int{3, 4, 7, 8, 9}, failing)
}

func TestComputeEmptySensitiveValuesDoNotCount(t *testing.T) {
	ds := buildDataset(t, []string{"sexo", "diagnostico"}, []models.Record{
		{"sexo": "M", "diagnostico": "J45"},
		{"sexo": "M", "diagnostico": ""},
		{"sexo": "M", "diagnostico": "E11"},
	})

	calc := NewGroupStatsCalculator(testLogger())
	table, err := calc.Compute(ds, []string{"sexo"}, "diagnostico")
	require.NoError(t, err)

	// The empty diagnosis contributes to k but not to l.
	assert.Equal(t, models.GroupStats{K: 3, L: 2}, table.ForRecord(0))
}

func TestComputeMissingVersusEmptyValue(t *testing.T) {
	ds := buildDataset(t, []string{"comuna", "diagnostico"}, []models.Record{
		{"comuna": "", "diagnostico": "J45"},
		{"diagnostico": "E11"}, // comuna absent, not empty
		{"comuna": "", "diagnostico": "I10"},
	})

	calc := NewGroupStatsCalculator(testLogger())
	table, err := calc.Compute(ds, []string{"comuna"}, "diagnostico")
	require.NoError(t, err)

	// Empty string and absent column are distinct categories.
	assert.Equal(t, 2, table.Groups())
	assert.Equal(t, 2, table.ForRecord(0).K)
	assert.Equal(t, 1, table.ForRecord(1).K)
}

func TestComputeAllSensitiveMissingFails(t *testing.T) {
	ds := buildDataset(t, []string{"sexo", "diagnostico"}, []models.Record{
		{"sexo": "M", "diagnostico": ""},
		{"sexo": "F", "diagnostico": ""},
	})

	calc := NewGroupStatsCalculator(testLogger())
	_, err := calc.Compute(ds, []string{"sexo"}, "diagnostico")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSensitiveAllMissing)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConfiguration, appErr.Type)
}

func TestComputeUnknownColumns(t *testing.T) {
	ds := buildDataset(t, []string{"sexo", "diagnostico"}, []models.Record{
		{"sexo": "M", "diagnostico": "J45"},
	})
	calc := NewGroupStatsCalculator(testLogger())

	_, err := calc.Compute(ds, []string{"comuna"}, "diagnostico")
	assert.Error(t, err)

	_, err = calc.Compute(ds, []string{"sexo"}, "edad")
	assert.Error(t, err)
}

func TestComputeOverrideReplacesColumn(t *testing.T) {
	ds := buildDataset(t, []string{"comuna", "diagnostico"}, []models.Record{
		{"comuna": "13101", "diagnostico": "J45"},
		{"comuna": "13102", "diagnostico": "E11"},
	})

	calc := NewGroupStatsCalculator(testLogger())
	table, err := calc.ComputeOverride(ds, []string{"comuna"}, "diagnostico",
		map[string][]string{"comuna": {"131**", "131**"}})
	require.NoError(t, err)

	assert.Equal(t, 1, table.Groups())
	assert.Equal(t, models.GroupStats{K: 2, L: 2}, table.ForRecord(0))

	// The dataset itself is untouched.
	assert.Equal(t, "13101", ds.Records[0]["comuna"])
	assert.Equal(t, "13102", ds.Records[1]["comuna"])
}
