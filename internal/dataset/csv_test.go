package dataset

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmolate/anonimizarpy/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestReadCSV(t *testing.T) {
	input := "rut,comuna,sexo,diagnostico\n" +
		"12345678-9,13101,M,J45\n" +
		"9876543-1,13201,F,E11\n"

	ds, err := ReadCSV(strings.NewReader(input), DefaultCSVOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"rut", "comuna", "sexo", "diagnostico"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "13101", ds.Records[0]["comuna"])
	assert.Equal(t, "F", ds.Records[1]["sexo"])
}

func TestReadCSVPadsShortRows(t *testing.T) {
	input := "comuna,sexo,diagnostico\n" +
		"13101,M\n"

	ds, err := ReadCSV(strings.NewReader(input), DefaultCSVOptions())
	require.NoError(t, err)

	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "", ds.Records[0]["diagnostico"])
}

func TestReadCSVCustomDelimiter(t *testing.T) {
	input := "comuna;sexo\n13101;M\n"

	ds, err := ReadCSV(strings.NewReader(input), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, "13101", ds.Records[0]["comuna"])
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := models.NewDataset([]string{"comuna", "sexo", "diagnostico"})
	require.NoError(t, ds.Append(models.Record{"comuna": "13101", "sexo": "M", "diagnostico": "J45"}))
	require.NoError(t, ds.Append(models.Record{"comuna": "131**", "sexo": "undetermined", "diagnostico": "E11"}))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds, DefaultCSVOptions()))

	back, err := ReadCSV(&buf, DefaultCSVOptions())
	require.NoError(t, err)

	assert.Equal(t, ds.Columns, back.Columns)
	assert.Equal(t, ds.Records, back.Records)
}

func TestWriteCSVMissingValuesAsNull(t *testing.T) {
	ds := models.NewDataset([]string{"comuna", "diagnostico"})
	require.NoError(t, ds.Append(models.Record{"diagnostico": "J45"}))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds, DefaultCSVOptions()))

	assert.Equal(t, "comuna,diagnostico\n,J45\n", buf.String())
}

func TestRemoveDirectIdentifiers(t *testing.T) {
	ds := models.NewDataset([]string{"rut", "nombre", "comuna"})
	require.NoError(t, ds.Append(models.Record{"rut": "12345678-9", "nombre": "Juan", "comuna": "13101"}))

	RemoveDirectIdentifiers(ds, []string{"rut", "nombre", "telefono"}, testLogger())

	assert.Equal(t, []string{"comuna"}, ds.Columns)
	assert.Equal(t, models.Record{"comuna": "13101"}, ds.Records[0])
	assert.False(t, ds.HasColumn("rut"))
}
