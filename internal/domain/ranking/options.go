package ranking

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithMapper sets the mapper used to score candidates. Nil is ignored.
func WithMapper(m Mapper) Option {
	return func(r *Ranker) {
		if m != nil {
			r.mapper = m
		}
	}
}
