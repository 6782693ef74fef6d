package errors

import (
	goerrors "errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Card catalog errors
	CodeSetCodeEmpty        Code = "SET_CODE_EMPTY"
	CodeSetNameEmpty        Code = "SET_NAME_EMPTY"
	CodeCardNumberEmpty     Code = "CARD_NUMBER_EMPTY"
	CodeCardNameEmpty       Code = "CARD_NAME_EMPTY"
	CodeRarityNameEmpty     Code = "RARITY_NAME_EMPTY"
	CodeRarityUnknown       Code = "RARITY_UNKNOWN"
	CodePackNameEmpty       Code = "PACK_NAME_EMPTY"
	CodePackTypeSlotCount   Code = "PACK_TYPE_INVALID_SLOT_COUNT"
	CodeProbabilityRange    Code = "PROBABILITY_OUT_OF_RANGE"
	CodeProbabilitySlotSums Code = "PROBABILITY_SLOT_SUMS_INVALID"

	// Collection errors
	CodeCollectionInvalidAction Code = "COLLECTION_INVALID_ACTION"
	CodeCollectionInvalidCardID Code = "COLLECTION_INVALID_CARD_ID"

	// Account errors
	CodeUserUsernameEmpty    Code = "USER_USERNAME_EMPTY"
	CodeUserUsernameTaken    Code = "USER_USERNAME_TAKEN"
	CodeUserEmailInvalid     Code = "USER_EMAIL_INVALID"
	CodeUserPasswordTooShort Code = "USER_PASSWORD_TOO_SHORT"
	CodeUserPasswordMismatch Code = "USER_PASSWORD_MISMATCH"
	CodeUserCredentials      Code = "USER_INVALID_CREDENTIALS"
	CodeSessionInvalid       Code = "SESSION_INVALID"

	// Friend errors
	CodeFriendSelfRequest    Code = "FRIEND_SELF_REQUEST"
	CodeFriendProfilePrivate Code = "FRIEND_PROFILE_PRIVATE"
	CodeFriendRequestUnknown Code = "FRIEND_REQUEST_UNKNOWN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Import/sync errors
	CodeImportBadRecord   Code = "IMPORT_BAD_RECORD"
	CodeSyncUpstream      Code = "SYNC_UPSTREAM_UNAVAILABLE"
	CodeSyncRarityUnknown Code = "SYNC_RARITY_UNMAPPED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSetCodeEmpty,
		CodeSetNameEmpty,
		CodeCardNumberEmpty,
		CodeCardNameEmpty,
		CodeRarityNameEmpty,
		CodeRarityUnknown,
		CodePackNameEmpty,
		CodePackTypeSlotCount,
		CodeProbabilityRange,
		CodeProbabilitySlotSums,
		CodeCollectionInvalidAction,
		CodeCollectionInvalidCardID,
		CodeUserUsernameEmpty,
		CodeUserEmailInvalid,
		CodeUserPasswordTooShort,
		CodeUserPasswordMismatch,
		CodeImportBadRecord:
		return http.StatusBadRequest
	case CodeUserCredentials, CodeSessionInvalid:
		return http.StatusUnauthorized
	case CodeFriendSelfRequest, CodeFriendProfilePrivate:
		return http.StatusForbidden
	case CodeNotFound, CodeFriendRequestUnknown:
		return http.StatusNotFound
	case CodeUserUsernameTaken:
		return http.StatusConflict
	case CodeSyncUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus resolves the HTTP status for any error, defaulting to 500.
func HTTPStatus(err error) int {
	var domainErr *Error
	if goerrors.As(err, &domainErr) {
		return domainErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// CodeOf extracts the domain code from an error chain.
func CodeOf(err error) Code {
	var domainErr *Error
	if goerrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}
