//go:build js || wasm
// +build js wasm

package dropdna

func defaultStorage(*Config) (CacheStorage, error) {
	return NewJSONStorage("")
}
