// Package embed turns text into hypervectors for the triple store's
// fingerprint provider.
//
// A Provider maps a symbol to a hypervector.Vector. Providers are assembled
// from two layers:
//
//   - An Embedder produces dense float embeddings. Jina calls an
//     OpenAI-compatible embeddings API; Pseudo is a deterministic offline
//     embedder built from byte trigram hashing.
//   - A Binarizer projects a dense embedding onto Width bits with a sparse
//     seeded random projection, so nearby embeddings give nearby vectors.
//
// Cache memoizes any Provider. An exact text hit returns the stored vector;
// with a sketch embedder configured, a text whose sketch vector lies within
// the near-match tolerance of a cached entry reuses that entry instead of
// calling the remote provider. Entries can be persisted with BoltStore.
//
//	jina, err := embed.NewJina(os.Getenv("JINA_API_KEY"))
//	remote := embed.NewProvider(jina, embed.NewBinarizer(jina.Dimensions()))
//	local := embed.NewProvider(embed.NewPseudo(), embed.NewBinarizer(embed.DefaultDimensions))
//	provider := embed.NewCache(remote, embed.WithSketch(local))
package embed
