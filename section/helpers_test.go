package section

import "errors"

var errBoom = errors.New("boom")

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errBoom
}
