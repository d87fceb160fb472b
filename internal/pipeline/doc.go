// Package pipeline provides a framework for executing analysis steps in
// sequence.
//
// Each input goes through the same stages: load the ciphertext, run the
// analysis, write the plaintext directory, and record the run in the
// history database. Each stage is implemented as a Step that receives the
// current report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running analyses
//
// Finalizer steps run after the main steps even when one of them failed or
// the context was cancelled, so a timed-out analysis still reaches the
// history database. The pipeline supports both individual inputs and batch
// processing with concurrency control using errgroup.
package pipeline
