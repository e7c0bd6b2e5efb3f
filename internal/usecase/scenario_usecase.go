package usecase

import "context"

// ScenarioUsecase drives a deterministic set of simulated users through
// the classifier, producing both live profiles and a structured operation
// log that the offline extractor can parse back.
type ScenarioUsecase interface {
	Run(ctx context.Context) error
}
