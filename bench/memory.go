package bench

import "runtime/metrics"

// MemorySampler reads current memory usage in bytes; ok is false when the
// host cannot report it.
type MemorySampler func() (bytes uint64, ok bool)

const heapObjectsMetric = "/memory/classes/heap/objects:bytes"

// HeapInUse reports the bytes held by live and not yet swept heap objects.
// It does not stop the world.
func HeapInUse() (uint64, bool) {
	sample := []metrics.Sample{{Name: heapObjectsMetric}}
	metrics.Read(sample)
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return 0, false
	}
	return sample[0].Value.Uint64(), true
}
