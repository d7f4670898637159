package testforms

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"pontoval/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	payloadKindDivisor = 8
	pointsKindDivisor  = 6
	pointsPerReal      = 163.5
)

// Constants for payload kind cases.
const (
	caseValidShort      = 0
	caseValidLong       = 1
	caseValidAccented   = 2
	caseValidExtra      = 3
	caseMissingName     = 4
	caseBadEmail        = 5
	caseShortMessage    = 6
	caseEverythingWrong = 7
)

// Constants for conversion probe cases.
const (
	caseSmallBalance   = 0
	caseExactRate      = 1
	caseLargeBalance   = 2
	caseFractional     = 3
	caseZeroOrNegative = 4
	caseGarbage        = 5
)

var sampleNames = []string{
	"Ana Souza",
	"Bruno Lima",
	"Carla Mendes",
	"Diego Alves",
	"Fernanda Rocha",
	"João Pereira",
	"Luiza Castro",
	"Marcos Oliveira",
}

var sampleMessages = []string{
	"Gostaria de saber mais sobre o resgate de pontos.",
	"Quando expira o meu saldo de pontos acumulados?",
	"Tive um problema ao resgatar um produto no catálogo.",
	"Podem confirmar o recebimento da minha última compra?",
	"Quero atualizar meu endereço de entrega cadastrado.",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(limit int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	return int(n.Int64())
}

// generateSubmissions creates the specified number of contact payloads with
// unique submission IDs. A share of them is deliberately invalid so the
// validation path gets exercised too.
func generateSubmissions(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating contact submissions", logger.Int("numSubmissions", config.NumSubmissions))

	subs := make([]Submission, config.NumSubmissions)

	// Generate submissions concurrently
	type subResult struct {
		index int
		sub   Submission
		err   error
	}

	resultChan := make(chan subResult, config.NumSubmissions)

	// Use worker pool for generation
	workerCount := minInt(config.Workers, config.NumSubmissions)
	subsPerWorker := config.NumSubmissions / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * subsPerWorker
		end := start + subsPerWorker
		if worker == workerCount-1 {
			end = config.NumSubmissions // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- subResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- subResult{index: i, sub: generateSingleSubmission(i)}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumSubmissions; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during submission generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate submission %d: %w", result.index, result.err)
			}
			subs[result.index] = result.sub
		}
	}

	stats.SubmissionsGenerated = len(subs)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(subs)))

	return subs, nil
}

// generateSingleSubmission creates one payload, valid or deliberately broken.
func generateSingleSubmission(index int) Submission {
	name := sampleNames[randomIndex(len(sampleNames))]
	message := sampleMessages[randomIndex(len(sampleMessages))]
	email := "cliente" + strconv.Itoa(index) + "@exemplo.com.br"

	sub := Submission{
		SubmissionID: uuid.New().String(),
		Name:         name,
		Email:        email,
		Message:      message,
		ExpectValid:  true,
	}

	kind, _ := rand.Int(rand.Reader, big.NewInt(payloadKindDivisor))
	switch kind.Int64() {
	case caseValidShort, caseValidLong, caseValidAccented, caseValidExtra:
		// Valid payloads are the common case
	case caseMissingName:
		sub.Name = "   "
		sub.ExpectValid = false
	case caseBadEmail:
		sub.Email = "cliente" + strconv.Itoa(index) + "-sem-arroba"
		sub.ExpectValid = false
	case caseShortMessage:
		sub.Message = "oi"
		sub.ExpectValid = false
	case caseEverythingWrong:
		sub.Name = ""
		sub.Email = "@"
		sub.Message = ""
		sub.ExpectValid = false
	}

	return sub
}

// generateConversionChecks builds a batch of /convert probes with known
// expected outcomes.
func generateConversionChecks(ctx context.Context, config *Config) []ConversionCheck {
	logger.Get().Info(ctx, "generating conversion checks", logger.Int("numConversions", config.NumConversions))

	checks := make([]ConversionCheck, config.NumConversions)
	for i := range checks {
		kind, _ := rand.Int(rand.Reader, big.NewInt(pointsKindDivisor))
		switch kind.Int64() {
		case caseSmallBalance:
			points := 1.0 + getRandomFloat()*162.0
			checks[i] = ConversionCheck{
				Points:      strconv.FormatFloat(points, 'f', 2, 64),
				ExpectOK:    true,
				ExpectValue: points / pointsPerReal,
			}
		case caseExactRate:
			multiple := float64(1 + randomIndex(50))
			checks[i] = ConversionCheck{
				Points:      strconv.FormatFloat(multiple*pointsPerReal, 'f', 1, 64),
				ExpectOK:    true,
				ExpectValue: multiple,
			}
		case caseLargeBalance:
			points := 10_000.0 + getRandomFloat()*1_000_000.0
			checks[i] = ConversionCheck{
				Points:      strconv.FormatFloat(points, 'f', 2, 64),
				ExpectOK:    true,
				ExpectValue: points / pointsPerReal,
			}
		case caseFractional:
			points := getRandomFloat() * 10.0
			if points == 0 {
				points = 0.5
			}
			checks[i] = ConversionCheck{
				Points:      strconv.FormatFloat(points, 'f', 4, 64),
				ExpectOK:    true,
				ExpectValue: points / pointsPerReal,
			}
		case caseZeroOrNegative:
			if randomIndex(2) == 0 {
				checks[i] = ConversionCheck{Points: "0", ExpectOK: false}
			} else {
				checks[i] = ConversionCheck{Points: "-" + strconv.Itoa(1+randomIndex(1000)), ExpectOK: false}
			}
		case caseGarbage:
			garbage := []string{"abc", "", "1e", "10,5,3", "NaN"}
			checks[i] = ConversionCheck{Points: garbage[randomIndex(len(garbage))], ExpectOK: false}
		}
	}

	return checks
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
