package usecases

import (
	"sync"
	"time"
)

// progressTickers набор индикаторов прогресса одного запуска.
// Все таймеры останавливаются одним вызовом Stop.
type progressTickers struct {
	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// startProgressTickers запускает по таймеру на каждый файл
func startProgressTickers(interval time.Duration, ids []string, tick func(id string)) *progressTickers {
	p := &progressTickers{stop: make(chan struct{})}
	if interval <= 0 {
		return p
	}

	for _, id := range ids {
		p.wg.Add(1)
		go func(id string) {
			defer p.wg.Done()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-p.stop:
					return
				case <-ticker.C:
					tick(id)
				}
			}
		}(id)
	}
	return p
}

// Stop останавливает все таймеры и ждет их завершения
func (p *progressTickers) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}
