// Package s3 implements types.Gateway on top of Amazon S3 (or any
// S3-compatible endpoint). It owns client construction, credential wiring,
// provider error translation into the structured error codes, per-call delete
// chunking, and presigned GET URLs.
package s3
