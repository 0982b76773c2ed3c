package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/shared/errors"
)

// maxCodeAttempts bounds collision retries before Submit gives up with a
// DuplicateCode error.
const maxCodeAttempts = 5

// newTrackingCode produces one candidate code in the published
// ADU-YYYY-NNNN format.
func newTrackingCode() string {
	year := time.Now().Year()
	seq := rand.Intn(10000)
	return fmt.Sprintf("ADU-%d-%04d", year, seq)
}

// generateCode picks a tracking code not yet present in the repository.
// The keyspace is one year's worth of four digits, so collisions are
// expected under load; the UNIQUE constraint on complaints.code remains
// the real guarantee.
func generateCode(ctx context.Context, repo domain.Repository) (string, error) {
	var code string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code = newTrackingCode()

		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", errors.DuplicateCode(code)
}
