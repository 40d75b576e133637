package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/tandemwire/tandem/pkg/mux"
	"github.com/tandemwire/tandem/pkg/transport/ws"
)

func benchCmd() *cobra.Command {
	var (
		url         string
		total       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure ping round-trip latency over one connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			conn, err := ws.Dial(ctx, url)
			if err != nil {
				return err
			}

			demo := newDemoCatalog()
			peer := mux.NewPeer(conn, demo.Catalog)
			peer.Start()
			defer peer.Close()

			return runBench(ctx, demo, peer, total, concurrency)
		},
	}

	cmd.Flags().StringVar(&url, "url", "ws://localhost:8433/ws", "Websocket endpoint")
	cmd.Flags().IntVarP(&total, "requests", "n", 1000, "Total number of pings")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 8, "Calls in flight at once")

	return cmd
}

func runBench(ctx context.Context, demo *demoCatalog, peer *mux.Peer, total, concurrency int) error {
	if total < 1 || concurrency < 1 {
		return fmt.Errorf("requests and concurrency must be positive")
	}

	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, total)
		firstErr  error
	)

	work := make(chan struct{}, total)
	for i := 0; i < total; i++ {
		work <- struct{}{}
	}
	close(work)

	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range work {
				callStart := time.Now()
				_, err := demo.Ping.Call(ctx, peer, struct{}{})
				elapsed := time.Since(callStart)

				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					latencies = append(latencies, elapsed)
				}
				mu.Unlock()

				if err != nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	if firstErr != nil {
		return fmt.Errorf("bench aborted after %d calls: %w", len(latencies), firstErr)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	percentile := func(p float64) time.Duration {
		idx := int(p * float64(len(latencies)-1))
		return latencies[idx]
	}

	fmt.Printf("%d pings, %d in flight, %.1fs total (%.0f req/s)\n",
		total, concurrency, elapsed.Seconds(), float64(total)/elapsed.Seconds())
	fmt.Printf("  min  %s\n", latencies[0].Round(time.Microsecond))
	fmt.Printf("  avg  %s\n", (sum / time.Duration(len(latencies))).Round(time.Microsecond))
	fmt.Printf("  p50  %s\n", percentile(0.50).Round(time.Microsecond))
	fmt.Printf("  p99  %s\n", percentile(0.99).Round(time.Microsecond))
	fmt.Printf("  max  %s\n", latencies[len(latencies)-1].Round(time.Microsecond))

	return nil
}
