// Package block implements the double-buffered hand-off between a transfer
// layer that fills and drains interleaved 24-bit wire buffers and a consumer
// that runs the effect chain over one half at a time.
//
// The transfer layer calls [Scheduler.OnHalfTransferComplete] and
// [Scheduler.OnFullTransferComplete] from its own context. Both only store a
// tri-state [Flag] and nudge a capacity-1 wake channel, so they never block.
// The consumer either calls [Scheduler.Poll] from its own loop or parks in
// [Scheduler.Run], which waits on the wake channel instead of spinning.
//
// For a block size of N wire words per half, the receive and transmit
// buffers hold 2N words. A half-transfer signal covers wire words [0, N) and
// float samples [0, N/4) per channel; a full-transfer signal covers [N, 2N)
// and [N/4, N/2).
package block
