// Package advect provides the per-timestep vector kernel of a
// multigrid-in-time solver for the 1-D advection-diffusion equation
//
//	u_t + c u_x = nu u_xx + f(x, t),  0 <= x <= L.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - app.go: App, the callback set a driver calls (init, clone, sum, dot,
//     pack, coarsen, refine, step, write)
//   - config.go: the YAML run configuration and its validation
//   - levelstore.go: reference-counted checkpoints, the only shared mutable state
//
// # Architecture
//
// The advect package wires the components; implementations live in
// sub-packages:
//   - advect/grid/: GridFunction, vector algebra and the buffer codec
//   - advect/operators/: summation-by-parts difference operators and damping
//   - advect/stepper/: RK4 time stepping with ghost points and boundary data
//   - advect/transfer/: spatial coarsening and refinement between levels
//   - advect/exact/: analytic solutions for initial, boundary and forcing data
//   - advect/trace/: call trace recording
//   - advect/braidtest/: sanity checks for the callback set
//
// Operators are built once per run and never mutated. A driver may call App
// methods concurrently as long as each call works on distinct grid functions.
package advect
