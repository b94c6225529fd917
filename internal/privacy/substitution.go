package privacy

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/pkg/errors"
)

// SubstitutionMethod names one of the closed set of fake-value
// substitution kinds. Each method is a tagged variant with its own
// configuration payload on the rule, not a runtime string lookup into
// arbitrary code.
type SubstitutionMethod string

const (
	MethodName        SubstitutionMethod = "name"
	MethodEmail       SubstitutionMethod = "email"
	MethodPhone       SubstitutionMethod = "phone"
	MethodAddress     SubstitutionMethod = "address"
	MethodDateOfBirth SubstitutionMethod = "date_of_birth"
	MethodFreeText    SubstitutionMethod = "free_text"
	MethodUniqueID    SubstitutionMethod = "unique_id"
	MethodCategorical SubstitutionMethod = "categorical"
	MethodNumeric     SubstitutionMethod = "numeric"
)

// SubstitutionRule ties a method to its per-field configuration.
type SubstitutionRule struct {
	Method SubstitutionMethod `json:"method"`
	// Mapping is the explicit value remap table for the categorical
	// method; unmapped values pass through unchanged.
	Mapping map[string]string `json:"mapping,omitempty"`
	// MaxJitter is the maximum relative perturbation for the numeric
	// method, applied independently per value. Must be in [0, 1].
	MaxJitter float64 `json:"max_jitter,omitempty"`
}

// SubstitutionConfig configures the substituter.
type SubstitutionConfig struct {
	Seed     int64                  `json:"seed"`
	Metadata map[string]interface{} `json:"metadata"`
}

func getDefaultSubstitutionConfig() *SubstitutionConfig {
	return &SubstitutionConfig{
		Seed:     time.Now().UnixNano(),
		Metadata: make(map[string]interface{}),
	}
}

// Substituter replaces direct-identifier values with plausible fakes.
// Substitution is purely per-value: no cross-row interaction, no effect
// on group statistics. Generated values are cached per (method, raw)
// pair so the same raw value maps to the same fake within a run.
type Substituter struct {
	config     *SubstitutionConfig
	logger     *logrus.Logger
	randSource *rand.Rand
	mappings   sync.Map
	mu         sync.Mutex
}

// NewSubstituter creates a substituter.
func NewSubstituter(config *SubstitutionConfig, logger *logrus.Logger) *Substituter {
	if config == nil {
		config = getDefaultSubstitutionConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	return &Substituter{
		config:     config,
		logger:     logger,
		randSource: rand.New(rand.NewSource(config.Seed)),
	}
}

// SubstituteColumn applies the rule to a column of raw values and
// returns the substituted column. Empty values stay empty.
func (s *Substituter) SubstituteColumn(ctx context.Context, values []string, rule SubstitutionRule) ([]string, error) {
	if err := s.validateRule(rule); err != nil {
		return nil, err
	}

	result := make([]string, len(values))
	for i, raw := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if raw == "" {
			continue
		}
		result[i] = s.substitute(raw, rule)
	}

	s.logger.WithFields(logrus.Fields{
		"method": rule.Method,
		"values": len(values),
	}).Info("Substituted column")

	return result, nil
}

func (s *Substituter) validateRule(rule SubstitutionRule) error {
	switch rule.Method {
	case MethodName, MethodEmail, MethodPhone, MethodAddress,
		MethodDateOfBirth, MethodFreeText, MethodUniqueID, MethodCategorical:
		return nil
	case MethodNumeric:
		if rule.MaxJitter < 0 || rule.MaxJitter > 1 {
			return errors.WrapError(errors.ErrInvalidJitter,
				errors.ErrorTypeConfiguration, errors.CodeInvalidPerturbation,
				fmt.Sprintf("max_jitter=%v", rule.MaxJitter))
		}
		return nil
	default:
		return errors.WrapError(errors.ErrUnknownMethod,
			errors.ErrorTypeConfiguration, errors.CodeUnknownMethod,
			string(rule.Method))
	}
}

func (s *Substituter) substitute(raw string, rule SubstitutionRule) string {
	switch rule.Method {
	case MethodCategorical:
		if mapped, ok := rule.Mapping[raw]; ok {
			return mapped
		}
		return raw
	case MethodNumeric:
		return s.perturbNumeric(raw, rule.MaxJitter)
	default:
		return s.generated(raw, rule.Method)
	}
}

// generated returns the cached fake for a raw value, generating one on
// first sight.
func (s *Substituter) generated(raw string, method SubstitutionMethod) string {
	key := string(method) + "\x1f" + raw
	if cached, ok := s.mappings.Load(key); ok {
		return cached.(string)
	}

	s.mu.Lock()
	value := s.generate(method)
	s.mu.Unlock()

	actual, _ := s.mappings.LoadOrStore(key, value)
	return actual.(string)
}

func (s *Substituter) generate(method SubstitutionMethod) string {
	switch method {
	case MethodName:
		return s.pick(fakeFirstNames) + " " + s.pick(fakeLastNames)
	case MethodEmail:
		return fmt.Sprintf("%s.%s%d@%s",
			strings.ToLower(s.pick(fakeFirstNames)),
			strings.ToLower(s.pick(fakeLastNames)),
			s.randSource.Intn(1000),
			s.pick(fakeMailDomains))
	case MethodPhone:
		return fmt.Sprintf("+56 9 %04d %04d",
			s.randSource.Intn(10000), s.randSource.Intn(10000))
	case MethodAddress:
		return fmt.Sprintf("%s %d", s.pick(fakeStreets), 1+s.randSource.Intn(9999))
	case MethodDateOfBirth:
		return s.randomDate().Format("2006-01-02")
	case MethodFreeText:
		return fmt.Sprintf("texto_%08x", s.randSource.Uint32())
	case MethodUniqueID:
		// Drawn from the seeded source so a fixed seed reproduces the
		// same ids across runs.
		id, err := uuid.NewRandomFromReader(s.randSource)
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	default:
		return fmt.Sprintf("anon_%08x", s.randSource.Uint32())
	}
}

func (s *Substituter) pick(pool []string) string {
	return pool[s.randSource.Intn(len(pool))]
}

func (s *Substituter) randomDate() time.Time {
	start := time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)
	span := int(end.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, s.randSource.Intn(span))
}

// perturbNumeric applies a uniform relative jitter in [-max, +max] to
// the value. Non-numeric values pass through unchanged. Integer inputs
// stay integers so perturbed ages and counts remain plausible.
func (s *Substituter) perturbNumeric(raw string, maxJitter float64) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}

	s.mu.Lock()
	jitter := (s.randSource.Float64()*2 - 1) * maxJitter
	s.mu.Unlock()

	perturbed := v * (1 + jitter)
	if _, err := strconv.Atoi(raw); err == nil {
		return strconv.FormatInt(int64(math.Round(perturbed)), 10)
	}
	return strconv.FormatFloat(perturbed, 'f', -1, 64)
}

var fakeFirstNames = []string{
	"Antonia", "Benjamin", "Camila", "Diego", "Emilia", "Felipe",
	"Isidora", "Joaquin", "Martina", "Matias", "Sofia", "Vicente",
}

var fakeLastNames = []string{
	"Araya", "Contreras", "Diaz", "Fuentes", "Gonzalez", "Munoz",
	"Perez", "Rojas", "Sepulveda", "Soto", "Torres", "Vargas",
}

var fakeMailDomains = []string{
	"example.com", "example.org", "mail.example.net",
}

var fakeStreets = []string{
	"Avenida Siempreviva", "Calle Uno", "Camino Real",
	"Pasaje Los Aromos", "Avenida Central", "Calle Larga",
}
