package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	// ReasonInvalidAddress rejects a missing or malformed principal identifier.
	ReasonInvalidAddress = "INVALID_ADDRESS"
	// ReasonInternal reports a store or transaction failure.
	ReasonInternal = "INTERNAL"
	// ReasonTimeout reports an operation that ran past its deadline.
	ReasonTimeout = "TIMEOUT"

	// MetadataContractCode carries the numeric contract error code.
	MetadataContractCode = "contract_code"
)

func invalidAddress(field, problem string) error {
	return errors.BadRequest(ReasonInvalidAddress, fmt.Sprintf("%s %s", field, problem))
}

// ContractErrorStatus returns the HTTP status a contract error is reported with.
func ContractErrorStatus(cerr *contract.Error) int {
	switch cerr {
	case contract.ErrEmptyInput, contract.ErrInputTooLong:
		return http.StatusBadRequest
	case contract.ErrUnauthorized:
		return http.StatusForbidden
	case contract.ErrNotInitialized:
		return http.StatusPreconditionFailed
	case contract.ErrAlreadyInitialized, contract.ErrCounterOverflow, contract.ErrArchived:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (uc *GreeterUsecase) mapError(ctx context.Context, op string, err error) error {
	if cerr, ok := contract.AsError(err); ok {
		uc.log.WithContext(ctx).Debugf("%s rejected: reason=%s code=%d", op, cerr.Reason, cerr.Code)
		return errors.New(ContractErrorStatus(cerr), cerr.Reason, cerr.Message).
			WithMetadata(map[string]string{MetadataContractCode: strconv.FormatUint(uint64(cerr.Code), 10)}).
			WithCause(cerr)
	}
	if kerr := new(errors.Error); errors.As(err, &kerr) {
		return kerr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		uc.log.WithContext(ctx).Warnf("%s timeout: err=%v", op, err)
		return errors.GatewayTimeout(ReasonTimeout, op+" timed out").WithCause(err)
	}
	uc.log.WithContext(ctx).Errorf("%s failed: err=%v", op, err)
	return errors.InternalServer(ReasonInternal, "contract operation failed").WithCause(fmt.Errorf("%s: %w", op, err))
}

func resultLabel(err error) string {
	if cerr, ok := contract.AsError(err); ok {
		return strings.ToLower(cerr.Reason)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	return "internal"
}
