// Package abi provides overflow-checked address arithmetic and the size
// limits shared by the sequence builder, the memory adapters and the
// renderer.
//
// This package is internal to metaprint.
package abi
