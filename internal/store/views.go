package store

// Substrings that carve disjoint views out of the flat store.
const (
	apiKeyMarker   = "API_KEY"
	baseURLMarker  = "BASE_URL"
	patternsMarker = "PATTERNS"
)

// APIKeys returns every vendor API key entry.
func (s *Store) APIKeys() ([]Entry, error) {
	return s.List(apiKeyMarker)
}

// BaseURLs returns every vendor base URL entry.
func (s *Store) BaseURLs() ([]Entry, error) {
	return s.List(baseURLMarker)
}

// PatternLoaderSettings returns the pattern loader entries (git repo, folder).
func (s *Store) PatternLoaderSettings() ([]Entry, error) {
	return s.List(patternsMarker)
}

// Lookup is Get with the not-found case folded into ok=false. Other errors
// are returned as-is.
func (s *Store) Lookup(key string) (string, bool, error) {
	entries, err := s.GetMany([]string{key})
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[0].Value, true, nil
}
