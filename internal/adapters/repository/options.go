package repository

// Option applies a configuration option to the DocumentStore.
type Option func(*DocumentStore)

// WithDataDir persists every session as <dir>/<id>.json and loads existing
// documents on start-up. An empty dir keeps sessions in memory only.
func WithDataDir(dir string) Option {
	return func(s *DocumentStore) {
		s.dataDir = dir
	}
}
