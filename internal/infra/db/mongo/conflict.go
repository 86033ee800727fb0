package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	domainlistings "stayhub/internal/domain/listings"
)

const writeConflictCode = 112

// asConflict turns a transaction write conflict raised by another writer into
// ErrConcurrentUpdate. Other errors are returned unchanged.
func asConflict(err error) error {
	if err == nil {
		return nil
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(writeConflictCode) || se.HasErrorLabel("TransientTransactionError")) {
		return domainlistings.ErrConcurrentUpdate
	}
	return err
}
