// Package engine implements the store engine: the single owner of the
// persisted record set and the only mutable handle to it.
//
// # Write and Read Contexts
//
// All mutations (appends, bulk deletes, remove-all) execute on one serial
// background write executor, isolating slow bulk operations from read
// latency. Reads are served from a read view the executor maintains: an
// ordered in-memory snapshot merged with every committed append and every
// tombstone batch. The explicit merge step is the synchronization point
// between the two contexts; a read sees every operation the executor has
// completed and can never observe a deleted record again.
//
// # Failure Policy
//
// Opening a store degrades to in-memory storage instead of failing the
// host; append failures are reported on an error channel instead of being
// returned to the logging call site; read failures are returned to the
// reader, which asked for data and needs to know it is unavailable.
package engine
