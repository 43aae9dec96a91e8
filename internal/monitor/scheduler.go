package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/metrics"
)

// Cycler é o que o agendador executa a cada disparo
type Cycler interface {
	RunCycle(ctx context.Context) Result
}

// FileLock impede ciclos simultâneos entre processos diferentes
type FileLock interface {
	TryLock() (bool, error)
	Unlock() error
}

// Scheduler executa ciclos em intervalo fixo, no máximo um por vez.
// Disparos que chegam durante um ciclo são descartados.
type Scheduler struct {
	cycler Cycler
	lock   FileLock

	cycleMu sync.Mutex
	busy    atomic.Bool

	mu       sync.Mutex
	interval time.Duration
	running  bool
	cancel   context.CancelFunc
	resetCh  chan time.Duration
	loopDone chan struct{}

	// OnResult, se definido, recebe o resultado de cada ciclo
	OnResult func(Result)
}

// NewScheduler cria o agendador; lock pode ser nil
func NewScheduler(cycler Cycler, interval time.Duration, lock FileLock) *Scheduler {
	return &Scheduler{cycler: cycler, interval: interval, lock: lock}
}

// Start inicia o timer e dispara o primeiro ciclo imediatamente.
// Retorna false se já estava em execução.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.resetCh = make(chan time.Duration)
	s.loopDone = make(chan struct{})
	interval := s.interval
	go s.loop(ctx, interval, s.resetCh, s.loopDone)
	s.mu.Unlock()

	logger.Log.Infof("Monitor iniciado. Verificando ofertas a cada %v", interval)
	s.trigger()
	return true
}

// Stop para o timer e espera o ciclo em andamento terminar
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.loopDone
	s.running = false
	s.mu.Unlock()

	<-done
	s.cycleMu.Lock()
	s.cycleMu.Unlock()
	logger.Log.Info("Monitor parado")
}

// RunNow dispara um ciclo manual; false se já havia um em andamento
func (s *Scheduler) RunNow() bool {
	return s.trigger()
}

// RunOnce executa um ciclo de forma síncrona
func (s *Scheduler) RunOnce(ctx context.Context) Result {
	if !s.cycleMu.TryLock() {
		metrics.RecordDroppedTrigger()
		return Result{Outcome: OutcomeBusy}
	}
	defer s.cycleMu.Unlock()
	return s.run(ctx)
}

// SetInterval troca o intervalo; o timer atual é reagendado, nunca duplicado
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
	if !s.running {
		return
	}
	select {
	case s.resetCh <- d:
		logger.Log.Infof("Intervalo alterado para %v", d)
	case <-s.loopDone:
	}
}

// Interval retorna o intervalo atual
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running informa se o timer está ativo
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Busy informa se há um ciclo em andamento
func (s *Scheduler) Busy() bool {
	return s.busy.Load()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, resetCh <-chan time.Duration, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger()
		case d := <-resetCh:
			ticker.Reset(d)
		}
	}
}

// trigger inicia um ciclo em background se nenhum estiver rodando
func (s *Scheduler) trigger() bool {
	if !s.cycleMu.TryLock() {
		metrics.RecordDroppedTrigger()
		logger.Log.Debug("Ciclo já em andamento, disparo ignorado")
		return false
	}
	go func() {
		defer s.cycleMu.Unlock()
		// o ciclo usa contexto próprio para não ser interrompido no meio de uma gravação
		s.run(context.Background())
	}()
	return true
}

// run executa o ciclo; cycleMu já está travado
func (s *Scheduler) run(ctx context.Context) Result {
	s.busy.Store(true)
	defer s.busy.Store(false)

	var res Result
	if s.lock != nil {
		locked, err := s.lock.TryLock()
		if err != nil {
			logger.Log.Errorf("Erro ao obter lock do banco: %v", err)
		}
		if !locked {
			if err == nil {
				logger.Log.Warn("Outro processo está executando um ciclo, disparo ignorado")
			}
			metrics.RecordDroppedTrigger()
			res = Result{Outcome: OutcomeBusy, Err: err}
			s.report(res)
			return res
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				logger.Log.Errorf("Erro ao liberar lock do banco: %v", err)
			}
		}()
	}

	res = s.cycler.RunCycle(ctx)
	s.report(res)
	return res
}

func (s *Scheduler) report(res Result) {
	if s.OnResult != nil {
		s.OnResult(res)
	}
}
