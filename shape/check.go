package shape

import "github.com/reoring/jtd"

// Check compares the shape declared by T with the shape inferred from root.
// It is meant for tests and development builds, e.g.
//
//	func TestOrderSchema(t *testing.T) {
//		if err := shape.Check[Order](orderSchema); err != nil {
//			t.Fatal(err)
//		}
//	}
func Check[T any](root *jtd.Schema) error {
	declared, err := Of[T]()
	if err != nil {
		return err
	}
	inferred, err := Infer(root)
	if err != nil {
		return err
	}
	return Compare(declared, inferred)
}

// MustCheck is like Check but panics on error.
func MustCheck[T any](root *jtd.Schema) {
	if err := Check[T](root); err != nil {
		panic(err)
	}
}

