package lifecycle

import "io"

type multi []Listener

// Multi returns a Listener that delivers every notification to each
// of listeners in order. Delivery stops at the first error.
func Multi(listeners ...Listener) Listener {
	return multi(listeners)
}

func (m multi) each(fn func(l Listener) error) error {
	for _, l := range m {
		if err := fn(l); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) RunStarted(testCount int) error {
	return m.each(func(l Listener) error { return l.RunStarted(testCount) })
}

func (m multi) TestStarted(d Description) error {
	return m.each(func(l Listener) error { return l.TestStarted(d) })
}

func (m multi) TestFinished(d Description) error {
	return m.each(func(l Listener) error { return l.TestFinished(d) })
}

func (m multi) TestFailure(f Failure) error {
	return m.each(func(l Listener) error { return l.TestFailure(f) })
}

func (m multi) TestAssumptionFailure(f Failure) error {
	return m.each(func(l Listener) error { return l.TestAssumptionFailure(f) })
}

func (m multi) TestIgnored(d Description) error {
	return m.each(func(l Listener) error { return l.TestIgnored(d) })
}

func (m multi) RunFinished(w io.Writer, r Result) error {
	return m.each(func(l Listener) error { return l.RunFinished(w, r) })
}
