package display

import "errors"

// Tee mirrors every call to several drivers.
type Tee []Driver

func (t Tee) Init() error {
	var errs []error
	for _, d := range t {
		if err := d.Init(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t Tee) Clear() {
	for _, d := range t {
		d.Clear()
	}
}

func (t Tee) SetCursor(row, col int) {
	for _, d := range t {
		d.SetCursor(row, col)
	}
}

func (t Tee) WriteString(s string) {
	for _, d := range t {
		d.WriteString(s)
	}
}
