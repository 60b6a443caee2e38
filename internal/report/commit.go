package report

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Output is a rendered file waiting to be written.
type Output struct {
	Path string
	Data []byte
}

// WriteAll replaces every destination or none. Each output is first written
// to a temporary file beside its destination; the temporaries are renamed
// into place only once all of them have been written. On a write error the
// temporaries are removed and existing destinations are left untouched.
func WriteAll(outputs []Output) error {
	temps := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, p := range temps {
			os.Remove(p)
		}
	}
	for _, o := range outputs {
		tmp, err := writeTemp(o)
		if err != nil {
			cleanup()
			return err
		}
		temps = append(temps, tmp)
	}
	for i, o := range outputs {
		if err := os.Rename(temps[i], o.Path); err != nil {
			cleanup()
			return errors.Wrapf(err, "report: rename into %s", o.Path)
		}
	}
	return nil
}

func writeTemp(o Output) (string, error) {
	dir := filepath.Dir(o.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "report: create directory for %s", o.Path)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(o.Path)+".*.tmp")
	if err != nil {
		return "", errors.Wrapf(err, "report: create %s", o.Path)
	}
	name := f.Name()
	_, werr := f.Write(o.Data)
	if werr == nil {
		werr = f.Chmod(0o644)
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(name)
		return "", errors.Wrapf(werr, "report: write %s", o.Path)
	}
	return name, nil
}
