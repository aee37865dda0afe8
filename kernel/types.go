package kernel

import (
	"path/filepath"
	"strings"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
)

// Type classifies what a kernel provides.
type Type uint8

const (
	TypeNA Type = iota
	TypeCK
	TypeSPK
	TypeTSPK
	TypeLSK
	TypeMK
	TypeSCLK
	TypeIAK
	TypeIK
	TypeFK
	TypeDSK
	TypePCK
	TypeEK
)

// Types lists every kernel type in catalog order.
var Types = []Type{
	TypeNA, TypeCK, TypeSPK, TypeTSPK, TypeLSK, TypeMK, TypeSCLK,
	TypeIAK, TypeIK, TypeFK, TypeDSK, TypePCK, TypeEK,
}

var typeNames = []string{"na", "ck", "spk", "tspk", "lsk", "mk", "sclk", "iak", "ik", "fk", "dsk", "pck", "ek"}

var typeByExtension = map[string]Type{
	".bc":  TypeCK,
	".bsp": TypeSPK,
	".tls": TypeLSK,
	".tm":  TypeMK,
	".tsc": TypeSCLK,
	".ti":  TypeIK,
	".tf":  TypeFK,
	".bds": TypeDSK,
	".tpc": TypePCK,
	".bpc": TypePCK,
	".bes": TypeEK,
}

func (typ Type) String() string {
	if int(typ) < len(typeNames) {
		return typeNames[typ]
	}

	return typeNames[TypeNA]
}

// ParseType returns the type named name, as used for catalog keys.
func ParseType(name string) (Type, error) {
	for i, typeName := range typeNames {
		if typeName == name {
			return Type(i), nil
		}
	}

	return TypeNA, errors.New(config.InvalidArgumentError(name + " is not a valid kernel type"))
}

// TypeFromPath derives the type from the file extension. Unknown extensions give TypeNA.
func TypeFromPath(path string) Type {
	return typeByExtension[strings.ToLower(filepath.Ext(path))]
}

// Quality is the provenance tier of a kernel.
type Quality uint8

const (
	QualityNA Quality = iota
	QualityPredicted
	QualityNadir
	QualityReconstructed
	QualitySmithed
)

// Qualities lists every quality from least to most refined.
var Qualities = []Quality{QualityNA, QualityPredicted, QualityNadir, QualityReconstructed, QualitySmithed}

var qualityNames = []string{"na", "predicted", "nadir", "reconstructed", "smithed"}

func (quality Quality) String() string {
	if int(quality) < len(qualityNames) {
		return qualityNames[quality]
	}

	return qualityNames[QualityNA]
}

// ParseQuality returns the quality named name.
func ParseQuality(name string) (Quality, error) {
	for i, qualityName := range qualityNames {
		if qualityName == name {
			return Quality(i), nil
		}
	}

	return QualityNA, errors.New(config.InvalidArgumentError(name + " is not a valid kernel quality"))
}

// Classify derives type and quality from the catalog location of a kernels member, such as
// /lro/moc/ck/reconstructed/kernels. The innermost type and quality keys win. Locations without
// a type key fall back to the file extension of path.
func Classify(ptr config.Pointer, path string) (Type, Quality) {
	typ, quality := TypeNA, QualityNA
	typeFound, qualityFound := false, false

	tokens := ptr.Tokens()
	for i := len(tokens) - 1; i >= 0; i-- {
		if !qualityFound {
			if q, err := ParseQuality(tokens[i]); err == nil && q != QualityNA {
				quality, qualityFound = q, true
				continue
			}
		}

		if !typeFound {
			if t, err := ParseType(tokens[i]); err == nil && t != TypeNA {
				typ, typeFound = t, true
			}
		}
	}

	if !typeFound {
		typ = TypeFromPath(path)
	}

	return typ, quality
}
