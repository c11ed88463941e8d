package model

import (
	"errors"
	"fmt"

	"wgadmin/pkg/ipam"
	"wgadmin/pkg/keys"
)

var (
	ErrPeerAlreadyExists = errors.New("peer already exists")
	ErrPeerNotFound      = errors.New("peer not found")
	ErrConnectionExists  = errors.New("connection already exists")
	ErrSelfConnection    = errors.New("peer cannot connect to itself")
	ErrInvalidPort       = errors.New("invalid port")
	ErrInvalidName       = errors.New("invalid peer name")
	ErrMalformedDocument = errors.New("malformed document")

	ErrPoolExhausted       = ipam.ErrPoolExhausted
	ErrInvalidAddress      = ipam.ErrInvalidAddress
	ErrProviderUnavailable = keys.ErrProviderUnavailable
)

func wrap(kind error, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
