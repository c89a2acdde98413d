package payments

import (
	"context"
	"sync"

	"github.com/alterd/checkout/internal/gateway"
	"github.com/segmentio/kafka-go"
)

type memStore struct {
	m        sync.Mutex
	attempts map[string]*Attempt
	err      error
}

func newMemStore() *memStore {
	return &memStore{attempts: map[string]*Attempt{}}
}

func (s *memStore) Create(_ context.Context, a *Attempt) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.attempts[a.OrderID]; ok {
		return ErrAlreadyExists
	}
	cp := *a
	s.attempts[a.OrderID] = &cp
	return nil
}

func (s *memStore) Get(_ context.Context, orderID string) (*Attempt, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.attempts[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) Transition(_ context.Context, orderID string, fn func(a *Attempt) error) (*Attempt, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.attempts[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	if err := fn(&cp); err != nil {
		return nil, err
	}
	for id, other := range s.attempts {
		if id != orderID && cp.PaymentID != "" && other.PaymentID == cp.PaymentID {
			return nil, ErrPaymentIDTaken
		}
	}
	s.attempts[orderID] = &cp
	out := cp
	return &out, nil
}

type stubGateway struct {
	m     sync.Mutex
	calls []gateway.CreateOrderRequest
	err   error
}

func (g *stubGateway) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Order{
		ID:        "order_abc",
		Entity:    "order",
		Amount:    req.Amount,
		AmountDue: req.Amount,
		Currency:  req.Currency,
		Receipt:   req.Receipt,
		Status:    "created",
	}, nil
}

func (g *stubGateway) callCount() int {
	g.m.Lock()
	defer g.m.Unlock()
	return len(g.calls)
}

type published struct {
	topic string
	key   string
	value []byte
}

type recPublisher struct {
	m    sync.Mutex
	msgs []published
}

func (p *recPublisher) Publish(topic string, key, value []byte, _ ...kafka.Header) {
	p.m.Lock()
	defer p.m.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, key: string(key), value: value})
}

func (p *recPublisher) topics() []string {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.topic)
	}
	return out
}
