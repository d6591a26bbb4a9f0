// Package braidtest holds sanity checks for the callback set a
// multigrid-in-time driver uses. Each check initializes vectors through the
// App, exercises one group of callbacks, logs what it did and returns an
// error describing every failed expectation.
package braidtest

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/braid-sim/advdiff/advect/transfer"
)

// Tolerance for the algebraic identities checked below, relative to the
// larger operand or one, whichever is bigger.
const tol = 1e-12

// App is the vector part of the driver contract.
type App[V any] interface {
	Init(t float64) (V, error)
	Clone(u V) (V, error)
	Free(u V)
	Sum(alpha float64, x V, beta float64, y V) error
	Dot(u, v V) (float64, error)
	BufSize() int
	BufPack(u V, buf []byte) (int, error)
	BufUnpack(buf []byte) (V, error)
	Write(t float64, level int, u V) error
}

// Vector is the capability set a driver may use on the state at one time
// point directly, bypassing the App. Construction and level transfer stay on
// the App since they need the run configuration.
type Vector[V any] interface {
	Clone() (V, error)
	Free()
	Sum(alpha float64, x V, beta float64) error
	Dot(v V) (float64, error)
	Pack(buf []byte) (int, error)
}

// Transfers is the optional spatial coarsening part of the contract.
type Transfers[V any] interface {
	Coarsen(fu V, w transfer.TimeWindow) (V, error)
	Refine(cu V, w transfer.TimeWindow) (V, error)
}

// TestInitWrite initializes a vector at t, writes it and frees it.
func TestInitWrite[V any](app App[V], log logrus.FieldLogger, t float64) error {
	log.Infof("TestInitWrite: init at t=%g", t)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestInitWrite: init: %w", err)
	}
	defer app.Free(u)
	if err := app.Write(t, 0, u); err != nil {
		return fmt.Errorf("TestInitWrite: write: %w", err)
	}
	return nil
}

// TestClone checks that a clone is identical to its source and independent of it.
func TestClone[V any](app App[V], log logrus.FieldLogger, t float64) error {
	log.Infof("TestClone: init at t=%g and clone", t)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestClone: init: %w", err)
	}
	defer app.Free(u)
	v, err := app.Clone(u)
	if err != nil {
		return fmt.Errorf("TestClone: clone: %w", err)
	}
	defer app.Free(v)

	var errs []error
	if d, err := distance(app, u, v); err != nil || d != 0 {
		errs = append(errs, fmt.Errorf("TestClone: clone differs from source (|u-v|^2=%g, err=%v)", d, err))
	}
	uu, err := app.Dot(u, u)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestClone: dot: %w", err))...)
	}
	if err := app.Sum(0, u, 2, v); err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestClone: sum: %w", err))...)
	}
	if uu2, err := app.Dot(u, u); err != nil {
		errs = append(errs, fmt.Errorf("TestClone: dot: %w", err))
	} else if uu2 != uu {
		errs = append(errs, fmt.Errorf("TestClone: changing the clone changed the source"))
	}
	if err := app.Write(t, 0, v); err != nil {
		errs = append(errs, fmt.Errorf("TestClone: write: %w", err))
	}
	return errors.Join(errs...)
}

// TestSum checks v = u + v and v = -u + v/2 on a clone of u.
func TestSum[V any](app App[V], log logrus.FieldLogger, t float64) error {
	log.Infof("TestSum: init at t=%g", t)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestSum: init: %w", err)
	}
	defer app.Free(u)
	v, err := app.Clone(u)
	if err != nil {
		return fmt.Errorf("TestSum: clone: %w", err)
	}
	defer app.Free(v)

	var errs []error
	uu, err := app.Dot(u, u)
	if err != nil {
		return fmt.Errorf("TestSum: dot: %w", err)
	}
	if err := app.Sum(1, u, 1, v); err != nil {
		return fmt.Errorf("TestSum: sum: %w", err)
	}
	if vv, err := app.Dot(v, v); err != nil {
		errs = append(errs, fmt.Errorf("TestSum: dot: %w", err))
	} else if !approx(vv, 4*uu) {
		errs = append(errs, fmt.Errorf("TestSum: |u+u|^2 = %g, want %g", vv, 4*uu))
	}
	if err := app.Write(t, 0, v); err != nil {
		errs = append(errs, fmt.Errorf("TestSum: write: %w", err))
	}

	if err := app.Sum(-1, u, 0.5, v); err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestSum: sum: %w", err))...)
	}
	if vv, err := app.Dot(v, v); err != nil {
		errs = append(errs, fmt.Errorf("TestSum: dot: %w", err))
	} else if vv != 0 {
		errs = append(errs, fmt.Errorf("TestSum: |-u + (2u)/2|^2 = %g, want 0", vv))
	}
	if err := app.Write(t, 0, v); err != nil {
		errs = append(errs, fmt.Errorf("TestSum: write: %w", err))
	}
	return errors.Join(errs...)
}

// TestDot checks inner products with known ratios.
func TestDot[V any](app App[V], log logrus.FieldLogger, t float64) error {
	log.Infof("TestDot: init at t=%g", t)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestDot: init: %w", err)
	}
	defer app.Free(u)
	w, err := app.Clone(u)
	if err != nil {
		return fmt.Errorf("TestDot: clone: %w", err)
	}
	defer app.Free(w)

	uu, err := app.Dot(u, u)
	if err != nil {
		return fmt.Errorf("TestDot: dot: %w", err)
	}
	if !(uu > 0) {
		return fmt.Errorf("TestDot: <u,u> = %g at t=%g, need a nonzero vector", uu, t)
	}

	var errs []error
	check := func(name string, alpha, beta, want float64) {
		if err := app.Sum(alpha, u, beta, w); err != nil {
			errs = append(errs, fmt.Errorf("TestDot: %s: %w", name, err))
			return
		}
		wu, err := app.Dot(w, u)
		if err != nil {
			errs = append(errs, fmt.Errorf("TestDot: %s: %w", name, err))
			return
		}
		uw, err := app.Dot(u, w)
		if err != nil {
			errs = append(errs, fmt.Errorf("TestDot: %s reversed: %w", name, err))
			return
		}
		if !approx(wu/uu, want) || wu != uw {
			errs = append(errs, fmt.Errorf("TestDot: %s = %g (reversed %g), want %g", name, wu/uu, uw/uu, want))
			return
		}
		log.Debugf("TestDot: %s = %g", name, wu/uu)
	}
	check("<2u+u, u>/<u,u>", 2, 1, 3)
	check("<0*u + w/3, u>/<u,u>", 0, 1.0/3, 1)
	check("<-u + w, u>/<u,u>", -1, 1, 0)
	return errors.Join(errs...)
}

// TestBuf packs a vector, unpacks it and checks the result equals the original.
func TestBuf[V any](app App[V], log logrus.FieldLogger, t float64) error {
	log.Infof("TestBuf: init at t=%g", t)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestBuf: init: %w", err)
	}
	defer app.Free(u)

	buf := make([]byte, app.BufSize())
	n, err := app.BufPack(u, buf)
	if err != nil {
		return fmt.Errorf("TestBuf: pack: %w", err)
	}
	log.Debugf("TestBuf: packed %d of %d bytes", n, len(buf))
	v, err := app.BufUnpack(buf[:n])
	if err != nil {
		return fmt.Errorf("TestBuf: unpack: %w", err)
	}
	defer app.Free(v)
	if d, err := distance(app, u, v); err != nil || d != 0 {
		return fmt.Errorf("TestBuf: unpacked vector differs (|u-v|^2=%g, err=%v)", d, err)
	}
	return nil
}

// TestVector checks that the methods of a vector implementing Vector agree
// with the App callbacks. It reports an error for vectors that do not.
func TestVector[V any](app App[V], log logrus.FieldLogger, t float64) error {
	log.Infof("TestVector: init at t=%g", t)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestVector: init: %w", err)
	}
	defer app.Free(u)
	vu, ok := any(u).(Vector[V])
	if !ok {
		return fmt.Errorf("TestVector: %T does not implement Vector", u)
	}

	c, err := vu.Clone()
	if err != nil {
		return fmt.Errorf("TestVector: clone: %w", err)
	}
	vc := any(c).(Vector[V])
	defer vc.Free()

	var errs []error
	if d, err := distance(app, u, c); err != nil || d != 0 {
		errs = append(errs, fmt.Errorf("TestVector: clone differs from source (|u-c|^2=%g, err=%v)", d, err))
	}
	// c = 2u + c = 3u
	if err := vc.Sum(2, u, 1); err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestVector: sum: %w", err))...)
	}
	cu, err1 := vc.Dot(u)
	want, err2 := app.Dot(c, u)
	uu, err3 := app.Dot(u, u)
	if err := errors.Join(err1, err2, err3); err != nil {
		errs = append(errs, fmt.Errorf("TestVector: dot: %w", err))
	} else if cu != want || !approx(cu, 3*uu) {
		errs = append(errs, fmt.Errorf("TestVector: <3u,u> = %g (app %g), want %g", cu, want, 3*uu))
	}

	b1, b2 := make([]byte, app.BufSize()), make([]byte, app.BufSize())
	n1, err1 := vu.Pack(b1)
	n2, err2 := app.BufPack(u, b2)
	if err := errors.Join(err1, err2); err != nil {
		errs = append(errs, fmt.Errorf("TestVector: pack: %w", err))
	} else if !bytes.Equal(b1[:n1], b2[:n2]) {
		errs = append(errs, fmt.Errorf("TestVector: packed %d bytes, app packed %d differing bytes", n1, n2))
	}
	return errors.Join(errs...)
}

// TestCoarsenRefine checks that coarsening and refinement are linear and
// return to a vector compatible with the original.
func TestCoarsenRefine[V any](app App[V], tr Transfers[V], log logrus.FieldLogger, t, fdt, cdt float64) error {
	w := transfer.TimeWindow{T: t, FineMinus: t - fdt, FinePlus: t + fdt, CoarseMinus: t - cdt, CoarsePlus: t + cdt}
	log.Infof("TestCoarsenRefine: t=%g fine dt=%g coarse dt=%g", t, fdt, cdt)
	u, err := app.Init(t)
	if err != nil {
		return fmt.Errorf("TestCoarsenRefine: init: %w", err)
	}
	defer app.Free(u)

	cu, err := tr.Coarsen(u, w)
	if err != nil {
		return fmt.Errorf("TestCoarsenRefine: coarsen: %w", err)
	}
	defer app.Free(cu)

	var errs []error
	if err := app.Write(t, 1, cu); err != nil {
		errs = append(errs, fmt.Errorf("TestCoarsenRefine: write coarse: %w", err))
	}

	// linearity: coarsen(2u) == 2 coarsen(u)
	u2, err := app.Clone(u)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestCoarsenRefine: clone: %w", err))...)
	}
	defer app.Free(u2)
	if err := app.Sum(0, u, 2, u2); err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestCoarsenRefine: sum: %w", err))...)
	}
	cu2, err := tr.Coarsen(u2, w)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestCoarsenRefine: coarsen: %w", err))...)
	}
	defer app.Free(cu2)
	c1, err1 := app.Dot(cu, cu)
	c2, err2 := app.Dot(cu2, cu2)
	if err := errors.Join(err1, err2); err != nil {
		errs = append(errs, fmt.Errorf("TestCoarsenRefine: dot: %w", err))
	} else if !approx(c2, 4*c1) {
		errs = append(errs, fmt.Errorf("TestCoarsenRefine: coarsening is not linear (|C(2u)|^2=%g, 4|C(u)|^2=%g)", c2, 4*c1))
	}

	fu, err := tr.Refine(cu, w)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("TestCoarsenRefine: refine: %w", err))...)
	}
	defer app.Free(fu)
	if err := app.Write(t, 0, fu); err != nil {
		errs = append(errs, fmt.Errorf("TestCoarsenRefine: write fine: %w", err))
	}

	d, err := distance(app, u, fu)
	if err != nil {
		errs = append(errs, fmt.Errorf("TestCoarsenRefine: refined vector does not match the fine level: %w", err))
	} else if uu, err := app.Dot(u, u); err != nil {
		errs = append(errs, fmt.Errorf("TestCoarsenRefine: dot: %w", err))
	} else {
		log.Infof("TestCoarsenRefine: |u - R(C(u))| / |u| = %.3e", math.Sqrt(d/uu))
	}
	return errors.Join(errs...)
}

// TestAll runs every check. Coarsening is checked when app also
// implements Transfers.
func TestAll[V any](app App[V], log logrus.FieldLogger, t, fdt, cdt float64) error {
	errs := []error{
		TestInitWrite(app, log, t),
		TestClone(app, log, t),
		TestSum(app, log, t),
		TestDot(app, log, t),
		TestBuf(app, log, t),
	}
	var zero V
	if _, ok := any(zero).(Vector[V]); ok {
		errs = append(errs, TestVector(app, log, t))
	}
	if tr, ok := any(app).(Transfers[V]); ok {
		errs = append(errs, TestCoarsenRefine(app, tr, log, t, fdt, cdt))
	} else {
		log.Infof("TestAll: no coarsening callbacks, skipping TestCoarsenRefine")
	}
	err := errors.Join(errs...)
	if err == nil {
		log.Infof("TestAll: all checks passed")
	}
	return err
}

// distance returns |u - v|^2 without modifying either vector.
func distance[V any](app App[V], u, v V) (float64, error) {
	d, err := app.Clone(v)
	if err != nil {
		return 0, err
	}
	defer app.Free(d)
	if err := app.Sum(1, u, -1, d); err != nil {
		return 0, err
	}
	return app.Dot(d, d)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
