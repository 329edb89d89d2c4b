package enums

import (
	"fmt"
	"strings"
)

// PackageSize is the unit a vendor offer's weight is expressed in.
type PackageSize string

const (
	PackageSizeGram       PackageSize = "g"
	PackageSizeKilogram   PackageSize = "kg"
	PackageSizeMilliliter PackageSize = "ml"
	PackageSizeLiter      PackageSize = "l"
	PackageSizePieces     PackageSize = "pcs"
)

var validPackageSizes = []PackageSize{
	PackageSizeGram,
	PackageSizeKilogram,
	PackageSizeMilliliter,
	PackageSizeLiter,
	PackageSizePieces,
}

// PackageSizes returns every accepted PackageSize in display order.
func PackageSizes() []PackageSize {
	return append([]PackageSize(nil), validPackageSizes...)
}

// String implements fmt.Stringer.
func (p PackageSize) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackageSize.
func (p PackageSize) IsValid() bool {
	for _, candidate := range validPackageSizes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackageSize converts raw input into a PackageSize. Matching ignores case and
// surrounding whitespace.
func ParsePackageSize(value string) (PackageSize, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPackageSizes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package size %q", value)
}
