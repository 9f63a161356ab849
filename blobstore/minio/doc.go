// Package minio provides a blobstore.BlobStore backed by MinIO or any other
// S3-compatible object store (Ceph, Garage, SeaweedFS).
//
// # Usage
//
//	store, err := minio.New("localhost:9000", "my-bucket",
//	    minio.WithCredentials("minioadmin", "minioadmin"),
//	    minio.WithPrefix("kb/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = kb.SaveBlob(ctx, store, "kb.holo")
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
