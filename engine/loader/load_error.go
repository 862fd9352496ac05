package loader

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a scene could not be loaded.
type ErrorKind int

const (
	// ErrorKindNotFound means the scene file or one of its resources does not exist.
	ErrorKindNotFound ErrorKind = iota

	// ErrorKindParseError means the scene file or a resource is malformed.
	ErrorKindParseError

	// ErrorKindUnsupportedFeature means the scene uses something the viewer cannot draw.
	ErrorKindUnsupportedFeature
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNotFound:
		return "not found"
	case ErrorKindParseError:
		return "parse error"
	case ErrorKindUnsupportedFeature:
		return "unsupported feature"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// LoadError is returned by SceneLoader.Load for every failure.
type LoadError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("load %q: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(kind ErrorKind, source string, err error) *LoadError {
	return &LoadError{Kind: kind, Source: source, Err: err}
}

// errorf builds an unattributed LoadError; Load fills in the source before returning it.
func errorf(kind ErrorKind, format string, args ...any) *LoadError {
	return &LoadError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func isKind(err error, kind ErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}

// IsNotFound reports whether err is a LoadError of kind ErrorKindNotFound.
func IsNotFound(err error) bool { return isKind(err, ErrorKindNotFound) }

// IsParseError reports whether err is a LoadError of kind ErrorKindParseError.
func IsParseError(err error) bool { return isKind(err, ErrorKindParseError) }

// IsUnsupported reports whether err is a LoadError of kind ErrorKindUnsupportedFeature.
func IsUnsupported(err error) bool { return isKind(err, ErrorKindUnsupportedFeature) }
