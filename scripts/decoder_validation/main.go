// Validate decoder allocations - measures how much the ARM decoder allocates
// per decoded word.
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/armsim/insts"
	"github.com/sarchlab/armsim/loader"
)

func main() {
	decoder := insts.NewDecoder()
	words := loader.SampleWords()

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(words[i%len(words)])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, w := range words {
			decoder.Decode(w)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(words)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	if allocations == 0 {
		fmt.Printf("\nSUCCESS: Zero allocations detected.\n")
	} else if float64(allocations)/float64(totalDecodes) < 0.1 {
		fmt.Printf("\nGOOD: Low allocation rate (< 0.1 per decode)\n")
	} else {
		fmt.Printf("\nWARNING: High allocation rate detected\n")
	}
}
