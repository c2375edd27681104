package restclient

import (
	"encoding/xml"
	"errors"
	"fmt"
	"math"

	"github.com/KarpelesLab/pjson"
	"github.com/KarpelesLab/typutil"
	"github.com/tidwall/gjson"
)

// Each decoder runs only after a successful classification and records any
// parse failure on res.

func decodeObject[T any](res *result[T], body []byte) {
	if isJSONNull(body) {
		res.parseFailed("object", typeName[T](), errNullPayload)
		return
	}
	if err := pjson.Unmarshal(body, &res.data); err != nil {
		res.parseFailed("object", typeName[T](), err)
	}
}

func decodeArray[T any](res *result[[]T], body []byte) {
	if isJSONNull(body) {
		res.parseFailed("an array of objects", typeName[T](), errNullPayload)
		return
	}
	if err := pjson.Unmarshal(body, &res.data); err != nil {
		res.parseFailed("an array of objects", typeName[T](), err)
		return
	}
	if res.data == nil {
		res.data = []T{}
	}
}

var errNullPayload = errors.New("payload is null")

func isJSONNull(body []byte) bool {
	return gjson.ValidBytes(body) && gjson.ParseBytes(body).Type == gjson.Null
}

func decodeXML[T any](res *result[T], body []byte) {
	if err := xml.Unmarshal(body, &res.data); err != nil {
		res.parseFailed("object", typeName[T](), err)
	}
}

// decodeNested reads an envelope object and extracts the array and count
// members by name.
func decodeNested[T any](res *result[NestedResults[T]], body []byte, fields NestedFields) {
	name := typeName[NestedResults[T]]()

	if !gjson.ValidBytes(body) {
		res.parseFailed("object", name, errors.New("invalid json"))
		return
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		res.parseFailed("object", name, fmt.Errorf("expected a json object, got %s", root.Type))
		return
	}

	arr := root.Get(gjson.Escape(fields.Array))
	if !arr.Exists() {
		res.parseFailed("object", name, fmt.Errorf("field %q not found", fields.Array))
		return
	}
	if !arr.IsArray() {
		res.parseFailed("object", name, fmt.Errorf("field %q is not an array", fields.Array))
		return
	}

	var out NestedResults[T]
	if err := pjson.Unmarshal([]byte(arr.Raw), &out.Results); err != nil {
		res.parseFailed("object", name, err)
		return
	}
	if out.Results == nil {
		out.Results = []T{}
	}

	cnt := root.Get(gjson.Escape(fields.Count))
	if !cnt.Exists() {
		out.Count = uint64(len(out.Results))
	} else {
		var n int64
		var ok bool
		switch cnt.Type {
		case gjson.Number:
			n, ok = cnt.Int(), cnt.Num == math.Trunc(cnt.Num)
		default:
			// some servers send the count as a string
			n, ok = typutil.AsInt(cnt.Value())
		}
		if !ok || n < 0 {
			res.parseFailed("object", name, fmt.Errorf("field %q is not a valid count: %s", fields.Count, cnt.Raw))
			return
		}
		out.Count = uint64(n)
	}

	res.data = out
}

func (r *result[T]) parseFailed(shape, typ string, err error) {
	var zero T
	r.data = zero
	r.typ = typ
	r.fail(KindDecode, fmt.Sprintf("Failed to parse %s of type: %s Exception message: %s", shape, typ, err), err)
}
