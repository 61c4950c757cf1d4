package executors

import (
	"context"

	"github.com/antflydb/deepresearch/internal/model"
)

// Reflect executes the reflect action: semantic-dedup candidates against
// every question ever asked, cap at MaxReflectPerStep, append survivors to
// the gap set (§4.6, §8 scenario S6).
func Reflect(ctx context.Context, s *Session, action model.ReflectAction) ([]string, Gates, error) {
	gates := Gates{DisableReflect: true}

	candidates := action.SubQuestions
	if len(candidates) > MaxReflectPerStep {
		candidates = candidates[:MaxReflectPerStep]
	}

	accepted, err := s.Questions.ProposeGaps(ctx, candidates)
	if err != nil {
		return nil, gates, err
	}
	return accepted, gates, nil
}
