// internal/captcha/generator.go
package captcha

import (
	"fmt"

	"github.com/mojocn/base64Captcha"
)

// Challenge is a rendered captcha: the image shown to the user and the
// answer the server expects back.
type Challenge struct {
	Image      string // base64-encoded PNG data URI
	Answer     string
	Difficulty string
}

// Generator produces captcha challenges. The rendering mechanism is a
// collaborator; everything downstream only cares about Image and Answer.
type Generator interface {
	Generate() (*Challenge, error)
}

// ImageGenerator renders digit captchas via base64Captcha.
type ImageGenerator struct {
	driver     base64Captcha.Driver
	difficulty string
}

// NewImageGenerator creates a generator producing 5-digit captchas sized to
// fit the client widget (180x60).
func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{
		driver:     base64Captcha.NewDriverDigit(60, 180, 5, 0.7, 60),
		difficulty: "medium",
	}
}

// Generate renders a fresh challenge.
func (g *ImageGenerator) Generate() (*Challenge, error) {
	_, content, answer := g.driver.GenerateIdQuestionAnswer()
	item, err := g.driver.DrawCaptcha(content)
	if err != nil {
		return nil, fmt.Errorf("failed to draw captcha: %w", err)
	}
	return &Challenge{
		Image:      item.EncodeB64string(),
		Answer:     answer,
		Difficulty: g.difficulty,
	}, nil
}
