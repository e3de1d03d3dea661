// Package fetch drives the per-room pipeline: fetch the schedule, normalize
// it and aggregate occupancy, for many rooms in parallel.
//
// At most MaxConcurrency rooms are admitted at a time through a weighted
// semaphore. A failure (error or panic) while processing one room is logged
// and replaced by a zero-filled row, so BuildResults always returns exactly
// one row per input room.
package fetch
