//go:build js && wasm

package main

import (
	"context"
	"runtime"
	"syscall/js"

	"github.com/voxelsplace/voxcore/api"
	"github.com/voxelsplace/voxcore/chunk"
	"github.com/voxelsplace/voxcore/pack"
)

func toJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func fromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

// entriesToJS returns an object mapping names to Uint8Arrays.
func entriesToJS(entries []pack.Entry) js.Value {
	result := js.Global().Get("Object").New()
	for _, e := range entries {
		result.Set(e.Name, toJS(e.Data))
	}
	return result
}

func entriesFromJS(obj js.Value) []pack.Entry {
	keys := js.Global().Get("Object").Call("keys", obj)
	entries := make([]pack.Entry, keys.Length())
	for i := range entries {
		k := keys.Index(i).String()
		entries[i] = pack.Entry{Name: k, Data: fromJS(obj.Get(k))}
	}
	return entries
}

func vox2chunks(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vox bytes")
	}
	size := chunk.DefaultSize
	if len(args) > 1 {
		size = args[1].Int()
	}
	entries, err := api.VoxToChunks(fromJS(args[0]), size)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return entriesToJS(entries)
}

func chunk2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing chunk bytes")
	}
	out, err := api.ChunkToGLB(fromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

func chunks2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing chunks object")
	}
	out, err := api.ChunksToGLB(context.Background(), entriesFromJS(args[0]), runtime.NumCPU())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

func packChunks(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing chunks object")
	}
	out, err := api.PackChunks(entriesFromJS(args[0]), pack.LayoutWhole, pack.CompZlib)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

func unpackChunks(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	entries, err := api.UnpackChunks(fromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return entriesToJS(entries)
}

func main() {
	js.Global().Set("vox2chunks", js.FuncOf(vox2chunks))
	js.Global().Set("chunk2glb", js.FuncOf(chunk2glb))
	js.Global().Set("chunks2glb", js.FuncOf(chunks2glb))
	js.Global().Set("packChunks", js.FuncOf(packChunks))
	js.Global().Set("unpackChunks", js.FuncOf(unpackChunks))
	select {}
}
