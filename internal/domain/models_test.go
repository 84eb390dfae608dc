package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagFromCode(t *testing.T) {
	tests := []struct {
		code string
		want LanguageTag
	}{
		{"en", LanguageEnglish},
		{"EN", LanguageEnglish},
		{"ar", LanguageArabic},
		{" ar ", LanguageArabic},
		{"fr", LanguageOther},
		{"", LanguageOther},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, TagFromCode(tt.code))
		})
	}
}

func TestLanguageTag_DisplayName(t *testing.T) {
	assert.Equal(t, "English", LanguageEnglish.DisplayName())
	assert.Equal(t, "Arabic", LanguageArabic.DisplayName())
	assert.Equal(t, "Other", LanguageOther.DisplayName())
	assert.Equal(t, "Unknown", LanguageUnknown.DisplayName())
	assert.Equal(t, "Unknown", LanguageTag("").DisplayName())
}

func TestSummaryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		words   int
		wantErr bool
	}{
		{"minimum", MinSummaryWords, false},
		{"default", DefaultSummaryWords, false},
		{"maximum", MaxSummaryWords, false},
		{"below minimum", 9, true},
		{"above maximum", 501, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SummaryRequest{Words: tt.words}.Validate()
			if tt.wantErr {
				assert.True(t, IsType(err, ErrorTypeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionRequest_Validate(t *testing.T) {
	assert.NoError(t, QuestionRequest{Question: "What is the total revenue?"}.Validate())
	assert.True(t, IsType(QuestionRequest{Question: ""}.Validate(), ErrorTypeValidation))
	assert.True(t, IsType(QuestionRequest{Question: "  \t\n"}.Validate(), ErrorTypeValidation))
}
