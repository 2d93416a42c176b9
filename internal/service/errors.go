package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/splitwiser/internal/auth"
	"github.com/mmynk/splitwiser/internal/ledger"
	"github.com/mmynk/splitwiser/internal/middleware"
	"github.com/mmynk/splitwiser/internal/splits"
	"github.com/mmynk/splitwiser/internal/storage"
)

var (
	errNotGroupMember = errors.New("you are not a member of this group")
	errNotAllowed     = errors.New("only the creator or payer can delete this expense")
	errAdminOnly      = errors.New("only group admins can add members")
	errNotParticipant = errors.New("you must be a participant in a direct record")
)

// toConnectError maps domain errors to Connect codes. Errors that already
// carry a code pass through.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var integrity *ledger.IntegrityError
	switch {
	case errors.As(err, &integrity):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errNotGroupMember), errors.Is(err, errNotAllowed), errors.Is(err, errAdminOnly),
		errors.Is(err, errNotParticipant):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case isInvalidInput(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func isInvalidInput(err error) bool {
	for _, target := range []error{
		ledger.ErrMalformedSplit,
		ledger.ErrInvalidAmount,
		ledger.ErrMissingPayer,
		ledger.ErrMissingReceiver,
		ledger.ErrSamePair,
		splits.ErrNoParticipants,
		splits.ErrNegativeAmount,
		splits.ErrSumMismatch,
		splits.ErrPercentSum,
		splits.ErrUnknownMode,
		splits.ErrDuplicate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// requireUser returns the authenticated caller's ID.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
