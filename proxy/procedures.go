// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package proxy

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	gerrors "github.com/tochemey/actorloc/errors"
)

const (
	serviceName = "actorloc.location.v1.LocationService"

	addLocationProcedure    = "/" + serviceName + "/AddLocation"
	removeLocationProcedure = "/" + serviceName + "/RemoveLocation"
	getLocationProcedure    = "/" + serviceName + "/GetLocation"
)

// reasonKey is the error metadata key carrying the directory error kind.
// Several kinds share a connect code, the reason tells them apart.
const reasonKey = "Actorloc-Error-Reason"

const (
	reasonInvalidActor    = "invalid-actor-id"
	reasonInvalidLocation = "invalid-location-id"
	reasonLockAborted     = "lock-aborted"
	reasonDirectoryClosed = "directory-closed"
	reasonActorNotFound   = "actor-not-found"
)

// toConnectError maps a directory error to its RPC status
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	var (
		code   connect.Code
		reason string
	)

	switch {
	case errors.Is(err, gerrors.ErrInvalidActorID):
		code, reason = connect.CodeInvalidArgument, reasonInvalidActor
	case errors.Is(err, gerrors.ErrInvalidLocationID):
		code, reason = connect.CodeInvalidArgument, reasonInvalidLocation
	case errors.Is(err, gerrors.ErrLockAborted):
		code, reason = connect.CodeAborted, reasonLockAborted
	case errors.Is(err, gerrors.ErrDirectoryClosed):
		code, reason = connect.CodeFailedPrecondition, reasonDirectoryClosed
	case errors.Is(err, gerrors.ErrActorNotFound):
		code, reason = connect.CodeNotFound, reasonActorNotFound
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
	}

	connectErr := connect.NewError(code, err)
	if reason != "" {
		connectErr.Meta().Set(reasonKey, reason)
	}
	return connectErr
}

// fromConnectError maps an RPC failure back to the directory error taxonomy
func fromConnectError(ctx context.Context, endpoint string, actorID int64, err error) error {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return gerrors.NewErrDirectoryUnavailable(endpoint, err)
	}

	switch connectErr.Meta().Get(reasonKey) {
	case reasonInvalidActor:
		return errors.Join(gerrors.NewErrInvalidActorID(actorID), err)
	case reasonInvalidLocation:
		return errors.Join(gerrors.ErrInvalidLocationID, err)
	case reasonLockAborted:
		return errors.Join(gerrors.NewErrLockAborted(actorID), err)
	case reasonDirectoryClosed:
		return errors.Join(gerrors.ErrDirectoryClosed, err)
	case reasonActorNotFound:
		return errors.Join(gerrors.NewErrActorNotFound(actorID), err)
	}

	// peers that do not send a reason
	switch connectErr.Code() {
	case connect.CodeAborted:
		return errors.Join(gerrors.NewErrLockAborted(actorID), err)
	case connect.CodeFailedPrecondition:
		return errors.Join(gerrors.ErrDirectoryClosed, err)
	case connect.CodeNotFound:
		return errors.Join(gerrors.NewErrActorNotFound(actorID), err)
	default:
		return gerrors.NewErrDirectoryUnavailable(endpoint, err)
	}
}
