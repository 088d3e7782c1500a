package index

// DefaultChunkSize is the number of characters per chunk, sized to stay
// well inside the embedding model's effective context.
const DefaultChunkSize = 250

// DefaultChunkOverlap is the number of characters shared between
// consecutive chunks so context survives the boundary.
const DefaultChunkOverlap = 20

// splitText slices text into fixed-size chunks with overlap. A text shorter
// than the chunk size comes back as a single chunk.
func splitText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}

	// Slice on runes, not bytes, so a chunk boundary never splits a
	// multi-byte character in a title or cast name.
	runes := []rune(text)
	n := len(runes)
	chunks := make([]string, 0, n/(size-overlap)+1)
	for start := 0; start < n; start += size - overlap {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
	}
	return chunks
}
