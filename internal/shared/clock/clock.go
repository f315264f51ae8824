package clock

import (
	"sync"
	"time"
)

// Clock abstrai a hora atual para que regras de horário (buffers de aposta,
// janela de polling) possam ser testadas de forma determinística.
type Clock interface {
	Now() time.Time
}

// Real usa o relógio do sistema.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fake é um relógio manual usado em testes.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(t time.Time) *Fake { return &Fake{now: t} }

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set fixa a hora atual.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance avança o relógio em d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
