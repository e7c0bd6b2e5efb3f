package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"profiler/config"
	"profiler/internal/domain/entity"
	"profiler/internal/domain/service"
	"profiler/internal/usecase"

	"github.com/google/uuid"
)

// scenarioProduct is one catalog item used by the simulation.
type scenarioProduct struct {
	id    string
	name  string
	price float64
}

// scenarioUser is one simulated user and the operations they perform.
type scenarioUser struct {
	name  string
	email string
	age   int
	run   func(ctx context.Context, s *scenarioService, u scenarioUser, rng *rand.Rand) error
}

var scenarioCatalog = []scenarioProduct{
	{id: "1", name: "USB Cable", price: 9.99},
	{id: "2", name: "Mouse Pad", price: 14.99},
	{id: "3", name: "HDMI Cable", price: 19.99},
	{id: "4", name: "Phone Case", price: 24.99},
	{id: "5", name: "Wireless Mouse", price: 49.99},
	{id: "6", name: "Mechanical Keyboard", price: 79.99},
	{id: "7", name: "Webcam HD", price: 89.99},
	{id: "8", name: "Gaming Monitor", price: 299.99},
	{id: "9", name: "Noise Cancelling Headphones", price: 349.99},
	{id: "10", name: "iPad Pro", price: 899.99},
	{id: "11", name: "MacBook Pro M3 Max", price: 2499.99},
	{id: "12", name: "Sony A7R V Camera", price: 3899.99},
}

type scenarioService struct {
	classifier usecase.ClassifierUsecase
	opLogger   service.OperationLogger
	cfg        *config.Config
	logger     *slog.Logger
}

// NewScenarioService creates the simulation runner. It drives a fixed set
// of users with distinct behavioral patterns through the classifier while
// mirroring every operation into the structured operation log.
func NewScenarioService(classifier usecase.ClassifierUsecase, opLogger service.OperationLogger, cfg *config.Config, logger *slog.Logger) usecase.ScenarioUsecase {
	return &scenarioService{
		classifier: classifier,
		opLogger:   opLogger,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *scenarioService) Run(ctx context.Context) error {
	seed := int64(1)
	if s.cfg.Scenario != nil && s.cfg.Scenario.Seed != 0 {
		seed = s.cfg.Scenario.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	users := []scenarioUser{
		{name: "Alice", email: "alice@email.com", age: 28, run: runCasualBrowser},
		{name: "Bob", email: "bob@email.com", age: 35, run: runProductManager},
		{name: "Carol", email: "carol@email.com", age: 31, run: runLuxuryHunter},
		{name: "Dave", email: "dave@email.com", age: 42, run: runInventoryClerk},
		{name: "Eve", email: "eve@email.com", age: 24, run: runWindowShopper},
	}

	s.logger.Info("running profiling scenarios", slog.Int("users", len(users)))

	for _, u := range users {
		if err := u.run(ctx, s, u, rng); err != nil {
			return fmt.Errorf("scenario for %s failed: %w", u.email, err)
		}
	}

	return nil
}

// runCasualBrowser produces a read-heavy pattern: catalog listings plus a
// few views of cheap products.
func runCasualBrowser(ctx context.Context, s *scenarioService, u scenarioUser, rng *rand.Rand) error {
	for i := 0; i < 8; i++ {
		if err := s.record(ctx, u, "getAllProducts", entity.KindRead, nil); err != nil {
			return err
		}
	}
	for i := 0; i < 6; i++ {
		p := cheapProduct(rng)
		if err := s.record(ctx, u, "getProductById", entity.KindRead, &p); err != nil {
			return err
		}
	}

	return nil
}

// runProductManager produces a write-heavy pattern.
func runProductManager(ctx context.Context, s *scenarioService, u scenarioUser, rng *rand.Rand) error {
	for i := 0; i < 2; i++ {
		if err := s.record(ctx, u, "getAllProducts", entity.KindRead, nil); err != nil {
			return err
		}
	}
	writes := []string{"addProduct", "addProduct", "addProduct", "updateProduct", "updateProduct", "updateProduct", "updateProduct", "deleteProduct", "deleteProduct", "deleteProduct"}
	for _, op := range writes {
		p := anyProduct(rng)
		if err := s.record(ctx, u, op, entity.KindWrite, &p); err != nil {
			return err
		}
	}

	return nil
}

// runLuxuryHunter views mostly expensive products.
func runLuxuryHunter(ctx context.Context, s *scenarioService, u scenarioUser, rng *rand.Rand) error {
	for i := 0; i < 2; i++ {
		if err := s.record(ctx, u, "getAllProducts", entity.KindRead, nil); err != nil {
			return err
		}
	}
	for i := 0; i < 8; i++ {
		p := expensiveProduct(rng)
		if err := s.record(ctx, u, "viewExpensiveProduct", entity.KindSearchExpensive, &p); err != nil {
			return err
		}
	}

	return nil
}

// runInventoryClerk is another write-heavy pattern with a different mix.
func runInventoryClerk(ctx context.Context, s *scenarioService, u scenarioUser, rng *rand.Rand) error {
	if err := s.record(ctx, u, "getAllProducts", entity.KindRead, nil); err != nil {
		return err
	}
	for i := 0; i < 7; i++ {
		p := anyProduct(rng)
		if err := s.record(ctx, u, "updateProduct", entity.KindWrite, &p); err != nil {
			return err
		}
	}

	return nil
}

// runWindowShopper only reads, never writes.
func runWindowShopper(ctx context.Context, s *scenarioService, u scenarioUser, rng *rand.Rand) error {
	for i := 0; i < 10; i++ {
		p := cheapProduct(rng)
		if err := s.record(ctx, u, "getProductById", entity.KindRead, &p); err != nil {
			return err
		}
	}

	return nil
}

// record feeds one operation to the live classifier and mirrors it into
// the structured operation log.
func (s *scenarioService) record(ctx context.Context, u scenarioUser, operation string, kind entity.OperationKind, product *scenarioProduct) error {
	input := &usecase.RecordOperationInput{
		UserName:      u.name,
		UserEmail:     u.email,
		UserAge:       u.age,
		OperationName: operation,
		Kind:          kind,
	}

	rec := entity.OperationRecord{
		ID:            uuid.New(),
		OperationName: operation,
		Kind:          kind,
		Timestamp:     time.Now(),
		UserName:      u.name,
		UserEmail:     u.email,
	}

	if product != nil {
		id, name := product.id, product.name
		input.ProductID, input.ProductName = &id, &name
		rec.ProductID, rec.ProductName = &id, &name

		// A price is observed when a product is viewed; writes only track
		// which product was touched.
		if kind != entity.KindWrite {
			price := product.price
			input.ProductPrice, rec.ProductPrice = &price, &price
		}
	}

	if _, err := s.classifier.RecordOperation(ctx, input); err != nil {
		return fmt.Errorf("record operation %s: %w", operation, err)
	}

	if err := s.opLogger.Append(rec); err != nil {
		return fmt.Errorf("append operation log: %w", err)
	}

	return nil
}

func cheapProduct(rng *rand.Rand) scenarioProduct {
	return scenarioCatalog[rng.Intn(7)]
}

func expensiveProduct(rng *rand.Rand) scenarioProduct {
	return scenarioCatalog[7+rng.Intn(5)]
}

func anyProduct(rng *rand.Rand) scenarioProduct {
	return scenarioCatalog[rng.Intn(len(scenarioCatalog))]
}
