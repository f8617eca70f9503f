package main

import "strings"

// Variant is a named build configuration of the native VM.
type Variant string

const (
	Product   Variant = "product"
	Debug     Variant = "debug"
	FastDebug Variant = "fastdebug"
	Optimized Variant = "optimized"
)

var Variants = []Variant{Product, Debug, FastDebug, Optimized}

func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants {
		if v == known {
			return v, nil
		}
	}
	return "", configErrorf("unknown build type: %s", s)
}

// MakeTarget is the native make target building this variant.
func (v Variant) MakeTarget() string {
	if v == Debug {
		return "jvmggraal"
	}
	return string(v) + "graal"
}
