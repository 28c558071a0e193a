package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo.connection_failed")
	ErrHealthcheckFailed      = errors.New("mongo.healthcheck_failed")
	ErrFailedToCreateIndexes  = errors.New("mongo.index_creation_failed")
)
