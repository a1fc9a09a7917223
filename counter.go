package trapdoor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// StartTransactionCounter logs read and write operations per interval until
// the returned stop function is called.
func (s *Store) StartTransactionCounter(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				readOps := atomic.SwapUint64(&s.readCounter, 0)
				writeOps := atomic.SwapUint64(&s.writeCounter, 0)
				s.config.Logger.WithFields(logrus.Fields{
					"read_ops":  readOps,
					"write_ops": writeOps,
					"interval":  interval,
				}).Info("Store operations")
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
