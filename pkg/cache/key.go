package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avnodegraph/core/pkg/types"
)

// signatureKey renders a NodeSignature into a canonical string so it can
// be used as a map key. Parameter names are sorted first so two
// structurally-equal signatures (spec.md §3's equality rule: same map by
// key/value, same ordered dependency list) always encode identically
// regardless of how their Params map was built.
func signatureKey(sig types.NodeSignature) string {
	var b strings.Builder

	names := make([]string, 0, len(sig.Params))
	for name := range sig.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		writeParamValue(&b, sig.Params[name])
		b.WriteByte(';')
	}

	b.WriteString("deps:")
	for i, dep := range sig.Deps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(dep))
	}

	return b.String()
}

func writeParamValue(b *strings.Builder, v types.ParamValue) {
	switch v.Kind() {
	case types.ParamKindString:
		s, _ := v.StringValue()
		fmt.Fprintf(b, "s:%q", s)
	case types.ParamKindInt:
		i, _ := v.IntValue()
		fmt.Fprintf(b, "i:%d", i)
	case types.ParamKindFloat:
		f, _ := v.FloatValue()
		fmt.Fprintf(b, "f:%v", f)
	case types.ParamKindBool:
		bv, _ := v.BoolValue()
		fmt.Fprintf(b, "b:%t", bv)
	case types.ParamKindBytes:
		raw, _ := v.BytesValue()
		fmt.Fprintf(b, "x:%x", raw)
	}
}
