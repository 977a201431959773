// Package pipeline provides a framework for executing verification stages
// in sequence.
//
// A run flows through five stages: extraction, resolution, metadata
// fetching, classification, and summarization. Each stage is implemented as
// a Step that receives the accumulated run state and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
//  1. It allows easy addition/removal of steps without modifying core logic
//  2. It provides consistent error handling and logging across steps
//  3. It supports cancellation via context between stages
//
// Extraction and resolution run single-threaded ahead of the fetch fan-out;
// they are CPU-bound and fast. Only the fetch stage performs network I/O,
// and only it runs concurrently. Summarization sorts after all fetches (or
// their terminal failures) complete, so final report ordering never depends
// on fetch completion order.
package pipeline
