package filestore

import "errors"

var (
	ErrInvalidConfig           = errors.New("filestore.invalid_config")
	ErrFailedToGetAbsolutePath = errors.New("filestore.absolute_path_failed")
	ErrFailedToCreateDirectory = errors.New("filestore.create_directory_failed")
	ErrFailedToWriteFile       = errors.New("filestore.write_failed")
)
