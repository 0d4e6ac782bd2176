package ctimeval_test

import (
	"math/big"
	"testing"

	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/typeval"
)

func TestUIntResultTypeIsUInt64(t *testing.T) {
	v := ctimeval.UInt(42)
	if v.ResultType() != typeval.TUInt64 {
		t.Fatalf("ResultType() = %v, want TUInt64", v.ResultType())
	}
	if got, want := v.String(), "42"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestIntResultTypeIsUInt64(t *testing.T) {
	v := ctimeval.Int(big.NewInt(-7))
	if v.ResultType() != typeval.TUInt64 {
		t.Fatalf("ResultType() = %v, want TUInt64", v.ResultType())
	}
	if got, want := v.String(), "-7"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestStringSliceResultType(t *testing.T) {
	v := ctimeval.StringSlice(4, 3)
	if v.ResultType() != typeval.TStringSlice {
		t.Fatalf("ResultType() = %v, want TStringSlice", v.ResultType())
	}
	if got, want := v.String(), "str@4,len=3"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFunctionResultTypeWrapsReturnType(t *testing.T) {
	v := ctimeval.Function(12, typeval.TUInt64)
	ft := v.ResultType()
	if ft.Kind != typeval.FunctionPointer {
		t.Fatalf("ResultType().Kind = %v, want FunctionPointer", ft.Kind)
	}
	if ft.Return == nil || *ft.Return != typeval.TUInt64 {
		t.Fatalf("ResultType().Return = %v, want TUInt64", ft.Return)
	}
}

func TestTypeOfResultTypeIsUnit(t *testing.T) {
	v := ctimeval.TypeOf(typeval.TStringSlice)
	if v.ResultType() != typeval.TUnit {
		t.Fatalf("ResultType() = %v, want TUnit", v.ResultType())
	}
}
