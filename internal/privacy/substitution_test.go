package privacy

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gmolate/anonimizarpy/pkg/errors"
)

func TestSubstituteCategorical(t *testing.T) {
	s := NewSubstituter(&SubstitutionConfig{Seed: 1}, testLogger())

	out, err := s.SubstituteColumn(context.Background(),
		[]string{"fonasa", "isapre", "particular", ""},
		SubstitutionRule{
			Method:  MethodCategorical,
			Mapping: map[string]string{"fonasa": "A", "isapre": "B"},
		})
	require.NoError(t, err)

	// Unmapped values pass through; empty values stay empty.
	assert.Equal(t, []string{"A", "B", "particular", ""}, out)
}

func TestSubstituteNameIsStableWithinRun(t *testing.T) {
	s := NewSubstituter(&SubstitutionConfig{Seed: 42}, testLogger())

	out, err := s.SubstituteColumn(context.Background(),
		[]string{"Juan Perez", "Maria Soto", "Juan Perez"},
		SubstitutionRule{Method: MethodName})
	require.NoError(t, err)

	assert.NotEqual(t, "Juan Perez", out[0])
	assert.Equal(t, out[0], out[2], "repeated raw values map to the same fake")
}

func TestSubstituteSeededDeterminism(t *testing.T) {
	values := []string{"Juan Perez", "Maria Soto", "Pedro Rojas"}
	rule := SubstitutionRule{Method: MethodEmail}

	a, err := NewSubstituter(&SubstitutionConfig{Seed: 7}, testLogger()).
		SubstituteColumn(context.Background(), values, rule)
	require.NoError(t, err)
	b, err := NewSubstituter(&SubstitutionConfig{Seed: 7}, testLogger()).
		SubstituteColumn(context.Background(), values, rule)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSubstituteUniqueID(t *testing.T) {
	s := NewSubstituter(&SubstitutionConfig{Seed: 1}, testLogger())

	out, err := s.SubstituteColumn(context.Background(),
		[]string{"12345678-9", "9876543-1"},
		SubstitutionRule{Method: MethodUniqueID})
	require.NoError(t, err)

	for _, v := range out {
		_, err := uuid.Parse(v)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, out[0], out[1])

	// A fixed seed reproduces the same ids.
	again, err := NewSubstituter(&SubstitutionConfig{Seed: 1}, testLogger()).
		SubstituteColumn(context.Background(),
			[]string{"12345678-9", "9876543-1"},
			SubstitutionRule{Method: MethodUniqueID})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestSubstituteNumericJitterBounds(t *testing.T) {
	s := NewSubstituter(&SubstitutionConfig{Seed: 3}, testLogger())

	values := make([]string, 50)
	for i := range values {
		values[i] = "100"
	}
	out, err := s.SubstituteColumn(context.Background(), values,
		SubstitutionRule{Method: MethodNumeric, MaxJitter: 0.1})
	require.NoError(t, err)

	for _, v := range out {
		n, err := strconv.Atoi(v)
		require.NoError(t, err, "integer input stays integer")
		assert.GreaterOrEqual(t, n, 90)
		assert.LessOrEqual(t, n, 110)
	}
}

func TestSubstituteNumericNonNumericPassthrough(t *testing.T) {
	s := NewSubstituter(&SubstitutionConfig{Seed: 3}, testLogger())

	out, err := s.SubstituteColumn(context.Background(),
		[]string{"no aplica"},
		SubstitutionRule{Method: MethodNumeric, MaxJitter: 0.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"no aplica"}, out)
}

func TestSubstituteInvalidRules(t *testing.T) {
	s := NewSubstituter(nil, testLogger())

	_, err := s.SubstituteColumn(context.Background(), []string{"1"},
		SubstitutionRule{Method: MethodNumeric, MaxJitter: 1.5})
	assert.ErrorIs(t, err, apperrors.ErrInvalidJitter)

	_, err = s.SubstituteColumn(context.Background(), []string{"x"},
		SubstitutionRule{Method: SubstitutionMethod("ofuscar")})
	assert.ErrorIs(t, err, apperrors.ErrUnknownMethod)
}

func TestSubstituteDateOfBirthFormat(t *testing.T) {
	s := NewSubstituter(&SubstitutionConfig{Seed: 9}, testLogger())

	out, err := s.SubstituteColumn(context.Background(),
		[]string{"1980-05-17"},
		SubstitutionRule{Method: MethodDateOfBirth})
	require.NoError(t, err)

	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, out[0])
}
