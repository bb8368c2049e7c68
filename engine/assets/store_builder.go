package assets

// StoreBuilderOption is a functional option for configuring a Store.
type StoreBuilderOption func(*store)

// WithSphereBands sets the tessellation of the built-in sphere.
//
// Parameters:
//   - latitude: number of rings from pole to pole
//   - longitude: number of segments around the axis
//
// Returns:
//   - StoreBuilderOption: a function that applies the tessellation to a store
func WithSphereBands(latitude, longitude int) StoreBuilderOption {
	return func(s *store) {
		s.sphereLatBands = latitude
		s.sphereLonBands = longitude
	}
}

// WithDecodeWorkers sets how many files are read and decoded in parallel during Initialize.
// Defaults to runtime.NumCPU().
//
// Parameters:
//   - n: the maximum number of decode workers
//
// Returns:
//   - StoreBuilderOption: a function that applies the worker count to a store
func WithDecodeWorkers(n int) StoreBuilderOption {
	return func(s *store) {
		s.decodeWorkers = n
	}
}
