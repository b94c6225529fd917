package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/pkg/constants"
	"github.com/gmolate/anonimizarpy/pkg/errors"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

// CSVOptions configures CSV reading and writing.
type CSVOptions struct {
	Delimiter rune   `json:"delimiter"`
	NullValue string `json:"null_value"`
}

// DefaultCSVOptions returns the default CSV settings.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: constants.DefaultCSVDelimiter,
		NullValue: "",
	}
}

// ReadCSV loads a header-led CSV stream into a dataset. The header row
// defines the schema; short rows are padded with the null value so a
// sparse export still yields schema-complete records.
func ReadCSV(r io.Reader, options CSVOptions) (*models.Dataset, error) {
	if options.Delimiter == 0 {
		options.Delimiter = constants.DefaultCSVDelimiter
	}

	reader := csv.NewReader(r)
	reader.Comma = options.Delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset,
			errors.CodeReadFailed, "failed to read CSV header")
	}

	ds := models.NewDataset(header)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeDataset,
				errors.CodeReadFailed, "failed to read CSV row")
		}

		record := make(models.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = options.NullValue
			}
		}
		if err := ds.Append(record); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// WriteCSV writes a dataset as CSV, header first, preserving the schema
// column order and the record order.
func WriteCSV(w io.Writer, ds *models.Dataset, options CSVOptions) error {
	if options.Delimiter == 0 {
		options.Delimiter = constants.DefaultCSVDelimiter
	}

	writer := csv.NewWriter(w)
	writer.Comma = options.Delimiter
	defer writer.Flush()

	if err := writer.Write(ds.Columns); err != nil {
		return errors.WrapError(err, errors.ErrorTypeDataset,
			errors.CodeWriteFailed, "failed to write CSV header")
	}

	row := make([]string, len(ds.Columns))
	for _, record := range ds.Records {
		for i, col := range ds.Columns {
			if v, ok := record[col]; ok {
				row[i] = v
			} else {
				row[i] = options.NullValue
			}
		}
		if err := writer.Write(row); err != nil {
			return errors.WrapError(err, errors.ErrorTypeDataset,
				errors.CodeWriteFailed, "failed to write CSV row")
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadFile loads a CSV file into a dataset.
func ReadFile(path string, options CSVOptions, logger *logrus.Logger) (*models.Dataset, error) {
	if logger == nil {
		logger = logrus.New()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset,
			errors.CodeReadFailed, fmt.Sprintf("failed to open %s", path))
	}
	defer f.Close()

	ds, err := ReadCSV(f, options)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"columns": len(ds.Columns),
		"records": ds.Len(),
	}).Info("Loaded dataset")

	return ds, nil
}

// WriteFile writes a dataset to a CSV file.
func WriteFile(path string, ds *models.Dataset, options CSVOptions, logger *logrus.Logger) error {
	if logger == nil {
		logger = logrus.New()
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeDataset,
			errors.CodeWriteFailed, fmt.Sprintf("failed to create %s", path))
	}
	defer f.Close()

	if err := WriteCSV(f, ds, options); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"records": ds.Len(),
	}).Info("Wrote dataset")

	return nil
}
