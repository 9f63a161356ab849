// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	err = kb.SaveBlob(ctx, store, "kb.holo")
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checked single-part puts for small snapshots
//   - Multipart uploads through the SDK upload manager for large ones
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
