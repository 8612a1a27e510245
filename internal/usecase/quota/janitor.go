package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/yourname/notebook_files/internal/models"
)

const flightKey = "evict"

// Janitor запускает проходы Evictor в фоне. Одновременно идёт не больше одного прохода;
// запросы, пришедшие во время прохода, схлопываются в один повторный проход.
type Janitor struct {
	evictor *Evictor
	logger  *log.Logger

	group   singleflight.Group
	pending atomic.Bool
	wg      sync.WaitGroup

	stopOnce sync.Once
	stop     chan struct{}
}

// NewJanitor создаёт Janitor поверх evictor.
func NewJanitor(evictor *Evictor, logger *log.Logger) *Janitor {
	return &Janitor{
		evictor: evictor,
		logger:  logger.WithPrefix("janitor"),
		stop:    make(chan struct{}),
	}
}

// Trigger ставит проход в очередь и сразу возвращается.
func (j *Janitor) Trigger() {
	j.pending.Store(true)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		_, _, _ = j.group.Do(flightKey, func() (any, error) {
			return j.drain(context.Background()), nil
		})
	}()
}

// RunNow выполняет проход синхронно, присоединяясь к уже идущему, если он есть.
func (j *Janitor) RunNow(ctx context.Context) models.EvictionReport {
	j.pending.Store(true)
	v, _, _ := j.group.Do(flightKey, func() (any, error) {
		return j.drain(ctx), nil
	})
	return v.(models.EvictionReport)
}

// drain повторяет проходы, пока приходят новые запросы.
func (j *Janitor) drain(ctx context.Context) models.EvictionReport {
	var last models.EvictionReport
	for j.pending.Swap(false) {
		last = j.evictor.Evict(ctx)
	}
	return last
}

// Start включает периодическую очистку и возвращает функцию остановки.
func (j *Janitor) Start(every time.Duration) func() {
	if every <= 0 {
		return j.Stop
	}

	ticker := time.NewTicker(every)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		for {
			select {
			case <-ticker.C:
				j.Trigger()
			case <-j.stop:
				ticker.Stop()
				return
			}
		}
	}()

	return j.Stop
}

// Stop останавливает периодическую очистку. Уже запущенные проходы доживают до конца.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
}

// Wait ждёт завершения всех фоновых проходов.
func (j *Janitor) Wait() {
	j.wg.Wait()
}
