package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DataPool holds the ids workers draw from. Patients and doctors are fixed
// after bootstrap; appointments grow and shrink as workers create and delete.
type DataPool struct {
	Patients []uuid.UUID
	Doctors  []uuid.UUID

	mu    sync.Mutex
	appts []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	dp.appts = append(dp.appts, id)
	dp.mu.Unlock()
}

// PickAppointment returns a random live appointment. With take set it is
// also removed, so two deletes never target the same id.
func (dp *DataPool) PickAppointment(rng *rand.Rand, take bool) (uuid.UUID, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()

	n := len(dp.appts)
	if n == 0 {
		return uuid.Nil, false
	}
	i := rng.Intn(n)
	id := dp.appts[i]
	if take {
		dp.appts[i] = dp.appts[n-1]
		dp.appts = dp.appts[:n-1]
	}
	return id, true
}

// outcome buckets a response the way this API reports failures.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeInvalid
	outcomeNotFound
	outcomeServerError
	outcomeTransport
	numOutcomes
)

var outcomeNames = [numOutcomes]string{"ok", "400", "404", "5xx", "transport"}

func classify(code int, err error) outcome {
	switch {
	case err != nil:
		return outcomeTransport
	case code >= 200 && code < 300:
		return outcomeOK
	case code == http.StatusNotFound:
		return outcomeNotFound
	case code >= 500:
		return outcomeServerError
	default:
		return outcomeInvalid
	}
}

type OperationStats struct {
	mu        sync.Mutex
	counts    [numOutcomes]int
	latencies []time.Duration
}

func (o *OperationStats) Record(latency time.Duration, code int, err error) {
	o.mu.Lock()
	o.counts[classify(code, err)]++
	o.latencies = append(o.latencies, latency)
	o.mu.Unlock()
}

type Summary struct {
	Total         int
	Counts        [numOutcomes]int
	Mean          time.Duration
	P50, P95, P99 time.Duration
	Max           time.Duration
}

func (o *OperationStats) Summary() Summary {
	o.mu.Lock()
	sorted := slices.Clone(o.latencies)
	sum := Summary{Counts: o.counts}
	o.mu.Unlock()

	sum.Total = len(sorted)
	if sum.Total == 0 {
		return sum
	}
	slices.Sort(sorted)

	var total time.Duration
	for _, l := range sorted {
		total += l
	}
	sum.Mean = total / time.Duration(sum.Total)
	sum.P50 = nearestRank(sorted, 50)
	sum.P95 = nearestRank(sorted, 95)
	sum.P99 = nearestRank(sorted, 99)
	sum.Max = sorted[len(sorted)-1]
	return sum
}

// nearestRank returns the smallest sample with at least p percent of the
// samples at or below it.
func nearestRank(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

type Metrics struct {
	Create OperationStats
	Status OperationStats
	List   OperationStats
	Delete OperationStats
}

func printSummary(name string, s Summary) {
	if s.Total == 0 {
		return
	}

	fmt.Printf("%-14s total=%d", name, s.Total)
	for i, c := range s.Counts {
		if c > 0 {
			fmt.Printf(" %s=%d (%.1f%%)", outcomeNames[i], c, float64(c)/float64(s.Total)*100)
		}
	}
	fmt.Println()
	fmt.Printf("%-14s mean=%s p50=%s p95=%s p99=%s max=%s\n\n", "",
		s.Mean.Round(time.Microsecond), s.P50.Round(time.Microsecond), s.P95.Round(time.Microsecond),
		s.P99.Round(time.Microsecond), s.Max.Round(time.Microsecond))
}
