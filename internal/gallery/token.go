package gallery

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode returns the opaque string form of the token.
func (t NextToken) Encode() (string, error) {
	return EncodeRef(PromptDirectoryRef(t))
}

// DecodeToken parses a string produced by NextToken.Encode.
func DecodeToken(s string) (*NextToken, error) {
	ref, err := DecodeRef(s)
	if err != nil {
		return nil, err
	}
	t := NextToken(ref)
	return &t, nil
}

// EncodeRef returns an opaque, URL-safe string form of ref.
func EncodeRef(ref PromptDirectoryRef) (string, error) {
	data, err := json.Marshal(ref)
	if err != nil {
		return "", fmt.Errorf("encoding ref: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeRef parses a string produced by EncodeRef and validates it.
func DecodeRef(s string) (PromptDirectoryRef, error) {
	var ref PromptDirectoryRef
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ref, fmt.Errorf("%w: malformed token: %v", ErrInvalidArgument, err)
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, fmt.Errorf("%w: malformed token: %v", ErrInvalidArgument, err)
	}
	if err := ValidateRef(ref); err != nil {
		return ref, err
	}
	return ref, nil
}
