package infra

import (
	"sync"
	"time"

	"stock-market-service/middleware/ratelimit/domain"
)

// WindowStore é uma implementação de infra baseada em janela deslizante:
// guarda os timestamps das requisições admitidas por chave e decide contra
// dois tetos (por minuto e por segundo).
//
// Algoritmo por decisão (tudo sob o mesmo lock, já que é read-then-write):
//
//  1. poda a lista da chave, mantendo só timestamps dentro do último minuto
//  2. nega se a lista podada já atingiu o teto por minuto
//  3. nega se a lista atingiu o teto por segundo E o timestamp mais recente
//     está a menos de 1s de agora
//  4. caso contrário, registra agora na lista e admite
//
// Atenção: o passo 3 compara apenas o timestamp MAIS RECENTE, não conta todos
// os eventos do último segundo. Com teto por segundo > 1 isso subestima o
// limite (nega depois de 1 evento recente). Comportamento mantido de propósito;
// não "corrigir" sem revisar os contratos dos clientes.
type WindowStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time

	perMinute int
	perSecond int

	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration

	now func() time.Time
}

type WindowOption func(*WindowStore)

// WithClock injeta o relógio (testes).
func WithClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func WithIdleTTL(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.idleTTL = d }
}

// WithCleanupEvery habilita o janitor periódico. O padrão é 0 (desligado):
// chaves de clientes nunca são removidas, só os timestamps são podados.
// Memória cresce com o número de clientes distintos durante a vida do processo.
func WithCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

func NewWindowStore(perMinute, perSecond int, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:   make(map[string][]time.Time),
		perMinute: perMinute,
		perSecond: perSecond,
		window:    time.Minute,
		idleTTL:   15 * time.Minute,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) PerMinute() int { return s.perMinute }
func (s *WindowStore) PerSecond() int { return s.perSecond }

// Get implementa domain.LimiterStore.
func (s *WindowStore) Get(key domain.Key) domain.Limiter {
	return windowLimiter{store: s, key: string(key)}
}

type windowLimiter struct {
	store *WindowStore
	key   string
}

func (l windowLimiter) Allow() bool { return l.store.allow(l.key) }

func (s *WindowStore) allow(key string) bool {
	now := s.now()
	cutoff := now.Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.entries[key]

	// poda in-place: mantém só o que está dentro da janela
	kept := log[:0]
	for _, ts := range log {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if s.perMinute > 0 && len(kept) >= s.perMinute {
		s.entries[key] = kept
		return false
	}
	if len(kept) > 0 && len(kept) >= s.perSecond && now.Sub(kept[len(kept)-1]) < time.Second {
		s.entries[key] = kept
		return false
	}

	s.entries[key] = append(kept, now)
	return true
}

// Cleanup remove chaves cujo último evento é mais velho que idleTTL.
func (s *WindowStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, log := range s.entries {
		if len(log) == 0 || log[len(log)-1].Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// No-op quando cleanupEvery <= 0 (o padrão). Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
