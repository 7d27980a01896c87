package docai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"passport-apply/apperror"
)

// MaxImageSize is the largest accepted OCR input.
const MaxImageSize = int64(10 * 1024 * 1024)

// ExtractionResult holds the structured fields read from an identity document.
type ExtractionResult struct {
	DocumentKind string `json:"document_kind"`
	FullName     string `json:"full_name"`
	NICNumber    string `json:"nic_number"`
	DateOfBirth  string `json:"date_of_birth"`
	PlaceOfBirth string `json:"place_of_birth"`
	Address      string `json:"address"`
	Gender       string `json:"gender"`

	ProcessingTimeMs int64 `json:"processing_time_ms,omitempty"`
}

const extractionPrompt = `Analyze this Sri Lankan identity document image (national identity card or birth certificate) and extract the following information. Return ONLY valid JSON.

Extract these fields from the image. If a field is missing or unclear, use an empty string.

Required JSON format:
{
"document_kind": string,     // "nic" or "birth_certificate"
"full_name": string,         // Full name as printed
"nic_number": string,        // NIC number if present
"date_of_birth": string,     // Date of birth as printed
"place_of_birth": string,    // Place of birth if present
"address": string,           // Address (combine address lines into a single readable string)
"gender": string             // Gender if present
}`

// Service extracts structured fields from identity document images using the
// Gemini Vision API.
type Service struct {
	model string
}

func NewService() *Service {
	return &Service{model: "gemini-2.5-flash-lite"}
}

// ValidImageType reports whether the content type is accepted for OCR.
func ValidImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

// Extract runs OCR extraction over one document image.
func (s *Service) Extract(ctx context.Context, imageBytes []byte, mimeType string) (*ExtractionResult, error) {
	if !ValidImageType(mimeType) {
		return nil, apperror.New(apperror.KindValidation,
			"Invalid file type. Only JPEG, JPG, PNG, and WebP files are allowed")
	}
	if int64(len(imageBytes)) > MaxImageSize {
		return nil, apperror.New(apperror.KindValidation, "File size too large. Maximum size is 10MB")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, apperror.New(apperror.KindInternal, "GEMINI_API_KEY not found in environment variables")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing, "failed to create Gemini client", err)
	}

	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: extractionPrompt},
			{InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     imageBytes,
			}},
		},
	}

	result, err := client.Models.GenerateContent(
		ctx,
		s.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing, "failed to generate content with OCR", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, apperror.New(apperror.KindProcessing, "no content generated by OCR")
	}
	responseText := result.Candidates[0].Content.Parts[0].Text
	if responseText == "" {
		return nil, apperror.New(apperror.KindProcessing, "empty response from OCR")
	}

	jsonText := extractJSONFromMarkdown(responseText)

	var parsed ExtractionResult
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing,
			fmt.Sprintf("failed to parse OCR response: %s", jsonText), err)
	}
	return &parsed, nil
}

// extractJSONFromMarkdown strips markdown code fences around a JSON payload.
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 1 {
			return strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	return text
}
