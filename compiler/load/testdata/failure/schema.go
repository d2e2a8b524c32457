package failure

// Pool carries an optional directive on a non-nillable type, which the
// interpreter must reject before any code is generated.
//
//buildgen:builder
type Pool struct {
	limit int `build:"optional"`
}
