package copier

import (
	"github.com/cockroachdb/errors"
	"github.com/jinzhu/copier"
)

// Deep returns deep copy of <inp>, so slices and maps of the copy can be modified without affecting the source
func Deep[T any](inp T) (T, error) {
	var out T
	if err := copier.CopyWithOption(&out, &inp, copier.Option{DeepCopy: true}); err != nil {
		return out, errors.Wrap(err, "Deep copy")
	}
	return out, nil
}

// PDeep returns deep copy of <inp>, panicking if copier fails.
//
// Only use with plain value types, copying them can't fail.
func PDeep[T any](inp T) T {
	out, err := Deep(inp)
	if err != nil {
		panic(err)
	}
	return out
}
