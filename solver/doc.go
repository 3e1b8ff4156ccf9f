// Package solver provides incremental variance-reduced proximal
// algorithms for finite-sum composite convex problems
//
//	minimize (1/N)·Σ f_i(x) + g(x)
//
// where each f_i is smooth and g is accessed only through its proximal
// operator. Four update rules share one lazy iterator and one driver:
//   - Finito, with limited-memory, minibatch and adaptive variants
//   - SAGA
//   - SAG (biased table-average direction, kept as published)
//   - SVRG, with the "++" inner-loop schedule
//
// Example usage:
//
//	comps, reg := problems.Random(1, 50, 20, 0.1)
//	res, err := solver.Solve(make([]float64, 20), comps, reg, solver.Options{
//	    Method:        solver.SAGA,
//	    MaxIterations: 5000,
//	    Tolerance:     1e-6,
//	})
//	if err != nil {
//	    // configuration or numeric-domain problem
//	}
//	fmt.Println(res.X, res.Iterations)
//
// For step-by-step control, NewIterator exposes the underlying lazy
// sequence of algorithm states:
//
//	it, _ := solver.NewIterator(x0, comps, reg, opts)
//	for i := 0; i < 100; i++ {
//	    st, _ := it.Next()
//	    _ = st.Solution()
//	}
package solver
