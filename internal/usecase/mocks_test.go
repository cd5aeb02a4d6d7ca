package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

type mockGameRepo struct {
	mock.Mock
}

func (m *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher keeps every event for later assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Event(nil), p.events...)
}

func (p *recordingPublisher) Last() Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.events[len(p.events)-1]
}
