package api

import (
	"io"
	"net/http"
)

func readAllLimited(r *http.Request, max int64) ([]byte, error) {
	rr := http.MaxBytesReader(nil, r.Body, max)
	defer rr.Close()
	return io.ReadAll(rr)
}
