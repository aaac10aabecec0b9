package services

// ChunkRunes splits s into pieces of at most size runes.
func ChunkRunes(s string, size int) []string {
	if s == "" {
		return nil
	}
	rs := []rune(s)
	if size <= 0 || size >= len(rs) {
		return []string{s}
	}
	out := make([]string, 0, (len(rs)+size-1)/size)
	for i := 0; i < len(rs); i += size {
		end := i + size
		if end > len(rs) {
			end = len(rs)
		}
		out = append(out, string(rs[i:end]))
	}
	return out
}
