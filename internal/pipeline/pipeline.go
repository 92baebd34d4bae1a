// Package pipeline fans a render pass out over many context chunks at once.
// The engine functions are pure, so the only coordination here is the worker
// pool itself.
package pipeline

import (
	"runtime"
	"sync"

	"answer_dashboard/internal/highlight"
	"answer_dashboard/internal/insight"
	"answer_dashboard/internal/source"
)

// ChunkAnalyzer processes one retrieved chunk at its position in the set.
type ChunkAnalyzer func(index int, chunk source.Chunk) error

// AnalyzeChunks runs fn over every chunk with bounded concurrency and
// collects whatever errors the analyzers return. Order of errors is not
// meaningful.
func AnalyzeChunks(chunks []source.Chunk, workers int, fn ChunkAnalyzer) []error {
	if len(chunks) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	type job struct {
		index int
		chunk source.Chunk
	}

	jobs := make(chan job)
	errs := make(chan error, len(chunks))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := fn(j.index, j.chunk); err != nil {
					errs <- err
				}
			}
		}()
	}

	for i, c := range chunks {
		jobs <- job{index: i, chunk: c}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	out := make([]error, 0, len(errs))
	for err := range errs {
		out = append(out, err)
	}
	return out
}

// RenderAll highlights every chunk under the same mode and signals,
// preserving chunk order in the result.
func RenderAll(chunks []source.Chunk, signals *insight.Signals, question string, mode highlight.Mode, workers int) [][]highlight.Span {
	out := make([][]highlight.Span, len(chunks))
	AnalyzeChunks(chunks, workers, func(index int, c source.Chunk) error {
		out[index] = highlight.Render(c.Text, signals, question, mode)
		return nil
	})
	return out
}
