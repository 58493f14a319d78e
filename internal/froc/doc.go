// Package froc computes Free-Response Receiver Operating Characteristic
// curves for detection tasks.
//
// Detections are either probability maps over an N-dimensional grid, which
// are binarised at a sweep of thresholds and reduced to component centroids,
// or explicit ranked point lists. Ground truth is a mask or a point list per
// sample. For every threshold (or rank cutoff) each sample is matched against
// its ground truth with an optimal one-to-one assignment, and the per-sample
// counts are aggregated into a mean sensitivity and a mean number of false
// positives per sample.
//
// The package is pure computation: inputs are never mutated and the only
// concurrency is a bounded fan-out across thresholds inside Sweep and
// RankSweep.
package froc
