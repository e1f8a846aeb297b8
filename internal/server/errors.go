package server

import (
	"database/sql"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alfredjeanlab/flock/internal/listview"
)

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// notFoundError names something the caller asked for that does not exist,
// such as an unknown collection or role. Maps to 404 / NotFound.
type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func isNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf) || errors.Is(err, sql.ErrNoRows) || errors.Is(err, listview.ErrNotFound)
}

// notFoundMessage prefers the error's own text for notFoundError, and
// "<entity> not found" for store misses.
func notFoundMessage(err error, entity string) string {
	var nf notFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return entity + " not found"
}

// writeStoreError maps err to an HTTP status and writes it as a JSON error.
func writeStoreError(w http.ResponseWriter, err error, entity string) {
	var ie inputError
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, notFoundMessage(err, entity))
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// grpcError maps err to a gRPC status error.
func grpcError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var ie inputError
	switch {
	case errors.As(err, &ie):
		return status.Error(codes.InvalidArgument, ie.Error())
	case isNotFound(err):
		return status.Error(codes.NotFound, notFoundMessage(err, entity))
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}
