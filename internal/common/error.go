package common

import "fmt"

var (
	ErrConfigNotFound      = fmt.Errorf("config file not found")
	ErrConfigAlreadyExists = fmt.Errorf("config file already exists")
	ErrProtectedConfig     = fmt.Errorf("config file is protected")
	ErrInvalidFilename     = fmt.Errorf("invalid config file name")
	ErrCopyPathNotSet      = fmt.Errorf("copy path is not set")
	ErrEmptyField          = fmt.Errorf("required field is empty")
	ErrInvalidLink         = fmt.Errorf("invalid link")
)
