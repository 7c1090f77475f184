package domain

import (
	"fmt"
	"strings"
)

const (
	nativeAssetLabel    = "native"
	fungibleAssetPrefix = "token:"
)

// AssetKind distinguishes the native coin of the network from fungible tokens.
type AssetKind uint8

const (
	// AssetKindUndefined is the kind of the zero Asset, which is never valid.
	AssetKindUndefined AssetKind = iota
	AssetKindNative
	AssetKindFungible
)

// Asset identifies what is traded. It's a closed two-variant type, build it
// only with NativeAsset or FungibleAsset.
type Asset struct {
	Kind AssetKind
	// ID is the token identifier, always empty for the native asset.
	ID string
}

// NativeAsset returns the native asset of the network.
func NativeAsset() Asset {
	return Asset{Kind: AssetKindNative}
}

// FungibleAsset returns the fungible token identified by the given id.
func FungibleAsset(id string) Asset {
	return Asset{Kind: AssetKindFungible, ID: id}
}

// ParseAsset is the inverse of Asset.String.
func ParseAsset(str string) (Asset, error) {
	if str == nativeAssetLabel {
		return NativeAsset(), nil
	}
	if strings.HasPrefix(str, fungibleAssetPrefix) {
		asset := FungibleAsset(strings.TrimPrefix(str, fungibleAssetPrefix))
		if err := asset.Validate(); err != nil {
			return Asset{}, err
		}
		return asset, nil
	}
	return Asset{}, fmt.Errorf("%w: %q", ErrAssetInvalid, str)
}

// Validate returns an error if the asset is not one of the two variants.
func (a Asset) Validate() error {
	switch a.Kind {
	case AssetKindNative:
		if a.ID != "" {
			return ErrAssetInvalid
		}
		return nil
	case AssetKindFungible:
		if strings.TrimSpace(a.ID) == "" {
			return ErrAssetInvalid
		}
		return nil
	default:
		return ErrAssetInvalid
	}
}

// IsNative returns whether the asset is the native coin.
func (a Asset) IsNative() bool {
	return a.Kind == AssetKindNative
}

// Equal returns whether a and b identify the same asset.
func (a Asset) Equal(b Asset) bool {
	return a.Kind == b.Kind && a.ID == b.ID
}

func (a Asset) String() string {
	switch a.Kind {
	case AssetKindNative:
		return nativeAssetLabel
	case AssetKindFungible:
		return fungibleAssetPrefix + a.ID
	default:
		return ""
	}
}

// MarshalText makes an Asset a json string.
func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an asset from its string representation.
func (a *Asset) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Asset{}
		return nil
	}
	asset, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = asset
	return nil
}

// Account is the identity of a trader as provided by the hosting environment.
// The empty Account is the zero value meaning "no account".
type Account string

// IsZero returns whether the account is unset.
func (a Account) IsZero() bool {
	return a == ""
}

// Validate returns an error if the account is empty or contains whitespaces.
func (a Account) Validate() error {
	if a.IsZero() || strings.ContainsAny(string(a), " \t\r\n") {
		return ErrAccountInvalid
	}
	return nil
}

func (a Account) String() string {
	return string(a)
}
