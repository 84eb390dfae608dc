// Package language decides which prompt language a document gets.
package language

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/pemistahl/lingua-go"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
)

// DefaultSampleSize is how many leading characters of a document are inspected.
const DefaultSampleSize = 500

var (
	errNoLetters    = errors.New("sample contains no letters")
	errUndetermined = errors.New("language could not be determined")
)

// Detector returns a lowercase ISO 639-1 code for a text sample.
type Detector interface {
	Detect(sample string) (string, error)
}

// Classifier maps a document onto a LanguageTag. Detector failures are never fatal.
type Classifier struct {
	detector   Detector
	sampleSize int
	logger     *observability.Logger
}

// NewClassifier creates a classifier. sampleSize <= 0 uses DefaultSampleSize.
func NewClassifier(detector Detector, sampleSize int, logger *observability.Logger) *Classifier {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Classifier{
		detector:   detector,
		sampleSize: sampleSize,
		logger:     logger.WithOperation("classify"),
	}
}

// Classify detects the language of the first sampleSize characters of text.
// "en" is English, "ar" is Arabic, any other code is Other, and a detector
// failure is Unknown.
func (c *Classifier) Classify(text string) domain.LanguageTag {
	sample := Sample(text, c.sampleSize)

	code, err := c.detector.Detect(sample)
	if err != nil {
		c.logger.Warn().
			Err(domain.ClassificationError("language detection failed", err)).
			Int("sample_chars", len([]rune(sample))).
			Msg("Falling back to unknown language")
		return domain.LanguageUnknown
	}

	tag := domain.TagFromCode(code)
	c.logger.Debug().Str("code", code).Str("language", string(tag)).Msg("Detected document language")
	return tag
}

// Sample returns the first n characters (runes) of text.
func Sample(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// LinguaDetector detects languages with lingua's statistical models.
type LinguaDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLinguaDetector creates a detector over every language lingua knows.
// Models are loaded on first use.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{}
}

// Detect implements Detector.
func (d *LinguaDetector) Detect(sample string) (string, error) {
	if !strings.ContainsFunc(sample, unicode.IsLetter) {
		return "", errNoLetters
	}

	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithLowAccuracyMode().
			Build()
	})

	lang, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return "", errUndetermined
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
