package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL      = errors.New("invalid URL")
	ErrInvalidTTL      = errors.New("invalid TTL")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidNetwork  = errors.New("invalid network")
	ErrRequired        = errors.New("required field missing")

	ErrConfigReadFailed   = errors.New("config read failed")
	ErrConfigParseFailed  = errors.New("config parse failed")
	ErrConfigValidateFail = errors.New("config validation failed")
	ErrNoServers          = errors.New("no servers configured")

	ErrStoreLocked        = errors.New("state database locked by another process")
	ErrStoreOpenFailed    = errors.New("state database open failed")
	ErrStoreMigrateFailed = errors.New("state database migration failed")

	ErrAPIStatus         = errors.New("API returned error status")
	ErrAPIDecodeFailed = errors.New("API response decode failed")
	ErrUnknownServer   = errors.New("unknown server")
	ErrVerifyMismatch  = errors.New("record verification mismatch")
)

func RequiredField(field string) error {
	return fmt.Errorf("%w: %s", ErrRequired, field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func WrapEntity(entity, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s[%s]: %w", entity, name, err)
}
