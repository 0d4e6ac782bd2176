// Package ctimeval implements the closed set of compile-time-known values:
// everything the IR generator can fully resolve without emitting code.
package ctimeval

import (
	"fmt"
	"math/big"

	"github.com/xyproto/furnc/internal/typeval"
)

// Kind is the closed variant tag for a CTimeVal.
type Kind int

const (
	KindUInt Kind = iota
	KindInt
	KindStringSlice
	KindFunction
	KindType
)

// Value is a tagged union over the five compile-time-constant shapes the
// source language knows about. Only the fields relevant to Kind are valid.
type Value struct {
	Kind Kind

	UInt uint64   // KindUInt
	Int  *big.Int // KindInt (i128 in the source language)

	StrOffset int // KindStringSlice: static-string pool offset
	StrLen    int // KindStringSlice: byte length

	FuncAddress int           // KindFunction: IR index of first instruction
	FuncReturn  typeval.Type  // KindFunction: return type
	TypeVal     typeval.Type  // KindType
}

func UInt(n uint64) Value { return Value{Kind: KindUInt, UInt: n} }

func Int(n *big.Int) Value { return Value{Kind: KindInt, Int: n} }

func StringSlice(offset, length int) Value {
	return Value{Kind: KindStringSlice, StrOffset: offset, StrLen: length}
}

func Function(address int, ret typeval.Type) Value {
	return Value{Kind: KindFunction, FuncAddress: address, FuncReturn: ret}
}

func TypeOf(t typeval.Type) Value {
	return Value{Kind: KindType, TypeVal: t}
}

// ResultType returns the TypeVal a value of this CTimeVal would carry as a
// runtime expression result.
func (v Value) ResultType() typeval.Type {
	switch v.Kind {
	case KindUInt, KindInt:
		return typeval.TUInt64
	case KindStringSlice:
		return typeval.TStringSlice
	case KindFunction:
		return typeval.Func(v.FuncReturn)
	case KindType:
		// A bare type token has no runtime type; callers must reject it
		// as a value (TypeAsValueError) before reaching here.
		return typeval.TUnit
	default:
		panic(fmt.Sprintf("ctimeval: unhandled kind %v", v.Kind))
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindUInt:
		return fmt.Sprintf("%d", v.UInt)
	case KindInt:
		return v.Int.String()
	case KindStringSlice:
		return fmt.Sprintf("str@%d,len=%d", v.StrOffset, v.StrLen)
	case KindFunction:
		return fmt.Sprintf("fn@%d", v.FuncAddress)
	case KindType:
		return v.TypeVal.String()
	default:
		return "<invalid>"
	}
}
