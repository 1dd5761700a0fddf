package v1alpha1

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
)

// LocatorType is the wire discriminator of a Locator.
type LocatorType string

const (
	LocatorTypeHub  LocatorType = "locatorv1/hf"
	LocatorTypeDisk LocatorType = "locatorv1/disk"
)

// Locator describes where an importable artifact comes from.
// The only implementations are HubLocator and DiskLocator.
type Locator interface {
	Type() LocatorType
	// FileName is the base name of the artifact, used as the registered model name.
	FileName() string
	isLocator()
}

// HubLocator points at a file inside a model hub repository.
type HubLocator struct {
	Repository string `json:"repository" validate:"required,hubrepo"`
	File       string `json:"file" validate:"required,relpath"`
}

// DiskLocator points at a file on the local filesystem.
type DiskLocator struct {
	Path string `json:"path" validate:"required,abspath"`
}

func (HubLocator) Type() LocatorType  { return LocatorTypeHub }
func (DiskLocator) Type() LocatorType { return LocatorTypeDisk }

func (h HubLocator) FileName() string  { return path.Base(h.File) }
func (d DiskLocator) FileName() string { return filepath.Base(d.Path) }

func (HubLocator) isLocator()  {}
func (DiskLocator) isLocator() {}

func (h HubLocator) String() string  { return fmt.Sprintf("hub:%s/%s", h.Repository, h.File) }
func (d DiskLocator) String() string { return fmt.Sprintf("disk:%s", d.Path) }

func (h HubLocator) MarshalJSON() ([]byte, error) {
	type plain HubLocator
	return json.Marshal(struct {
		Type LocatorType `json:"type"`
		plain
	}{Type: LocatorTypeHub, plain: plain(h)})
}

func (d DiskLocator) MarshalJSON() ([]byte, error) {
	type plain DiskLocator
	return json.Marshal(struct {
		Type LocatorType `json:"type"`
		plain
	}{Type: LocatorTypeDisk, plain: plain(d)})
}

var ErrUnknownLocatorType = errors.New("unknown locator type")

// UnmarshalLocator decodes the tagged JSON form of a locator.
func UnmarshalLocator(data []byte) (Locator, error) {
	var head struct {
		Type LocatorType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case LocatorTypeHub:
		var h HubLocator
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, err
		}
		return h, nil
	case LocatorTypeDisk:
		var d DiskLocator
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocatorType, head.Type)
	}
}

// LocatorEnvelope carries a Locator inside other JSON documents.
type LocatorEnvelope struct {
	Locator
}

func (e LocatorEnvelope) MarshalJSON() ([]byte, error) {
	if e.Locator == nil {
		return []byte("null"), nil
	}
	return json.Marshal(e.Locator)
}

func (e *LocatorEnvelope) UnmarshalJSON(data []byte) error {
	l, err := UnmarshalLocator(data)
	if err != nil {
		return err
	}
	e.Locator = l
	return nil
}
