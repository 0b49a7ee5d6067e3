package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// readList sends the non-empty lines of r until r ends or ctx is done.
func readList(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)

	go func() {
		defer close(out)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				workerLog.Debug("readList context done")
				return
			}
		}
	}()

	return out
}

func convertWorker(ctx context.Context, paths <-chan string, cfg config) (<-chan *result, <-chan struct{}) {
	out := make(chan *result)
	done := make(chan struct{}, 1)

	go func() {
		var wg sync.WaitGroup
		goroutines := make(chan struct{}, cfg.Workers)

	loop:
		for path := range paths {
			select {
			case goroutines <- struct{}{}:
			case <-ctx.Done():
				workerLog.Debug("context done")
				break loop
			}
			wg.Add(1)
			go func(ctx context.Context, path string, goroutines <-chan struct{}, out chan<- *result, wg *sync.WaitGroup) {
				defer wg.Done()

				select {
				case out <- convertFile(path, cfg):
				case <-ctx.Done():
					workerLog.Debug("convertFile context done", zap.String("file", path))
				}
				<-goroutines

			}(ctx, path, goroutines, out, &wg)
		}

		wg.Wait()
		close(goroutines)
		close(out)

		done <- struct{}{}
		close(done)
	}()

	return out, done
}

type summary struct {
	files  int
	failed int
	output int
}

// convertAll drains the worker. Failures are reported and counted, they do not stop the batch.
func convertAll(parent context.Context, paths <-chan string, cfg config, report func(*result)) summary {
	ctx, cancel := context.WithCancel(parent)
	results, done := convertWorker(ctx, paths, cfg)

	defer func() {
		workerLog.Debug("cancel")
		cancel()
		<-done // wait convertWorker closed
	}()

	var s summary
	for result := range results {
		s.files++
		s.output += len(result.files)
		if result.err != nil {
			s.failed++
		}
		report(result)
	}
	return s
}
