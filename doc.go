// Package holograph provides an in-memory knowledge store for
// subject-predicate-object facts encoded as hyperdimensional vectors.
//
// Every symbol maps to a 10,000-bit hypervector. A triple is stored as the
// bundle of its role-bound fields plus a qualia overlay, placed in one cell of
// a 5x5x5 grid addressed by the field vectors, and recorded in an exact pair
// index.
//
// # Quick Start
//
//	ctx := context.Background()
//	kb, _ := holograph.New()
//	defer kb.Close()
//
//	_ = kb.Insert(ctx, model.Triple{Subject: "Ada", Predicate: "loves", Object: "Jan"})
//
//	// Exact lookups answer in O(1) with similarity 1.0.
//	objects, _ := kb.QueryObject(ctx, "Ada", "loves")
//
//	// Resonance finds stored triples similar on the known fields.
//	matches, _ := kb.Resonate(ctx, holograph.Query{Subject: "Ada"}, 0.9)
//
// # Exact vs. Resonant Queries
//
// QueryObject, QuerySubject and QueryPredicate consult the exact index and
// never miss. Resonate scans only the grid cells consistent with the known
// fields and ranks entries by projected Hamming similarity, so it can also
// surface facts that share structure with the query. Every exact hit is also
// returned by Resonate at threshold 1.0.
//
// # Persistence
//
//	_ = kb.SaveToFile(ctx, "kb.holo")
//	_ = kb.LoadFromFile(ctx, "kb.holo")
//
// Snapshots are checksummed and optionally LZ4 or Zstd compressed. Load
// validates the whole snapshot before swapping it in; a malformed file yields
// an error matching ErrCorruptState and leaves the store unchanged. SaveBlob
// and LoadBlob write to any blobstore.BlobStore, such as S3 or MinIO.
//
// # Semantic Fingerprints
//
// WithFingerprintProvider plugs an embed.Provider into the store so subject
// and object symbols get vectors derived from text embeddings instead of
// random ones. Predicates stay symbolic.
package holograph
