// Package mmap provides read-only memory-mapped file access.
//
// Snapshots read from the local blob store are mapped instead of copied
// through kernel buffers. The mapping is valid until Close; callers must not
// touch Bytes afterwards.
//
// Unix platforms use mmap(2) through golang.org/x/sys/unix. Windows uses
// CreateFileMapping/MapViewOfFile.
package mmap
