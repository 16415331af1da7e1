package service

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flwr-dev/superlink/internal/store"
	"github.com/flwr-dev/superlink/internal/validate"
)

// invalidArgument turns a non-empty Violations list into an
// InvalidArgument status carrying the full per-field detail
// (spec.md §7). superlinkpb has no dedicated wire message for a
// single violation, so the field/description pairs are folded into
// the status message rather than attached via status.WithDetails.
func invalidArgument(vs validate.Violations) error {
	return status.Error(codes.InvalidArgument, "invalid argument: "+vs.Error())
}

// storeError classifies an internal/store error per spec.md §7 and
// logs it at the RPC boundary; store errors are never retried inside
// the server.
func storeError(log *log.Entry, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrConflict) {
		log.WithError(err).WithField("op", op).Error("store conflict")
		return status.Error(codes.Internal, "internal server error")
	}
	log.WithError(err).WithField("op", op).Error("store error")
	return status.Error(codes.Internal, "internal server error")
}
